// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Profile errors
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileLimitReached  = errors.New("profile limit reached")
	ErrProfileNameTaken     = errors.New("profile name already in use")
	ErrProfileNotOwned      = errors.New("profile does not belong to account")

	// Device session errors
	ErrSessionNotFound    = errors.New("device session not found")
	ErrDeviceLimitReached = errors.New("device limit reached")

	// Subscription errors
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrQualityNotAllowed    = errors.New("video quality not allowed for plan")

	// Catalog errors
	ErrContentNotFound  = errors.New("content not found")
	ErrMetadataNotFound = errors.New("metadata not found")

	// Progress errors
	ErrInvalidCheckpoint = errors.New("invalid progress checkpoint")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
