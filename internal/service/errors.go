package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	ErrOTPNotFound    = errors.New("otp expired or not found, request a new one")
	ErrOTPExpired     = errors.New("otp has expired, request a new one")
	ErrOTPExhausted   = errors.New("too many failed attempts, request a new otp")
	ErrDispatchFailed = errors.New("failed to send otp")

	ErrInvalidPhone       = errors.New("invalid phone number format, use a 10 digit indian mobile number")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// OTPMismatchError carries the remaining attempt budget so the route layer
// can tell the device user how many tries are left.
type OTPMismatchError struct {
	Remaining int
}

func (e *OTPMismatchError) Error() string {
	return fmt.Sprintf("invalid otp, %d attempts remaining", e.Remaining)
}
