package provider

import "fmt"

const defaultAuthMessage = "failed to obtain access token"

// AuthenticationError means no usable token could be obtained from the token endpoint.
// It is fatal to the in-flight call but does not poison later attempts.
type AuthenticationError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *AuthenticationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = defaultAuthMessage
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed (status %d): %s", e.StatusCode, msg)
	}
	return "authentication failed: " + msg
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// VerificationRequestError is a transport or decode failure on a verification endpoint.
// Callers never receive it as a returned error: it is folded into a failure Result.
type VerificationRequestError struct {
	Endpoint string
	Err      error
}

func (e *VerificationRequestError) Error() string {
	return fmt.Sprintf("verification request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *VerificationRequestError) Unwrap() error {
	return e.Err
}
