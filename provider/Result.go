package provider

// Result is the provider's JSON response, forwarded verbatim.
// Transport failures are represented as {"success": false, "error": "<message>"}.
type Result map[string]interface{}

// FailureResult builds the structured failure value returned instead of an error.
func FailureResult(err error) Result {
	return Result{
		"success": false,
		"error":   err.Error(),
	}
}

// Success is false only when the result carries an explicit success=false.
// Provider answers without that key are successful calls, whatever their verdict.
func (r Result) Success() bool {
	if v, ok := r["success"].(bool); ok {
		return v
	}
	return true
}

// ErrorMessage returns the failure message, if any.
func (r Result) ErrorMessage() string {
	if msg, ok := r["error"].(string); ok {
		return msg
	}
	return ""
}

// Status returns the provider's status object, e.g. {"state": "complete", "status": "verified"}.
func (r Result) Status() map[string]interface{} {
	return asObject(r["status"])
}

// Summary returns the provider's summary object with per-check match details.
func (r Result) Summary() map[string]interface{} {
	return asObject(r["summary"])
}

// VerificationStatus is status.status, or a top-level string status.
func (r Result) VerificationStatus() string {
	if s, ok := r["status"].(string); ok {
		return s
	}
	if s, ok := r.Status()["status"].(string); ok {
		return s
	}
	return ""
}

// CheckStatus reads summary.<check>.status, e.g. CheckStatus("nin_check") == "EXACT_MATCH".
func (r Result) CheckStatus(check string) string {
	s, _ := asObject(r.Summary()[check])["status"].(string)
	return s
}

func asObject(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}
