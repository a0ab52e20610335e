package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrMobileNumberTaken    = errors.New("mobile number already registered")
	ErrInvalidCredentials   = errors.New("incorrect credentials")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrTestNotFound         = errors.New("test response not found")
	ErrTestAlreadySubmitted = errors.New("test already completed")
	ErrInvalidTestType      = errors.New("invalid test type")
	ErrOTPNotFound          = errors.New("otp expired or not requested")
	ErrOTPMismatch          = errors.New("otp does not match")
	ErrOTPThrottled         = errors.New("otp recently sent, try again later")
)

// ValidationError 输入校验错误，controller 层统一映射为 400
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) error {
	return &ValidationError{Reason: reason}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
