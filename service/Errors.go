package service

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrStoreNotFound        = errors.New("store not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotAdmin             = errors.New("user is not an admin")
	ErrNotStoreOwner        = errors.New("user does not own this store")
	ErrAlreadyVerified      = errors.New("already verified")
	ErrStoreAlreadyApproved = errors.New("store already approved")
	ErrStoreAlreadyRejected = errors.New("store already rejected")
	ErrInvalidSubject       = errors.New("invalid verification subject")
)
