package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entry not found")
	ErrAlreadyRegistered  = errors.New("phone number already has an active code")
	ErrCodeAlreadyUsed    = errors.New("code already used")
	ErrCodeExpired        = errors.New("code expired")
	ErrDuplicateCode      = errors.New("generated code already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Phone validation rejection reasons
	ErrPhoneFormat     = errors.New("not a valid Swedish mobile number")
	ErrPhoneRepeated   = errors.New("number contains too many repeated digits")
	ErrPhoneSequential = errors.New("number contains a sequential digit pattern")
	ErrPhoneLowVariety = errors.New("number contains too few distinct digits")
)
