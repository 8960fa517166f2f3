// Package validate checks user input before it reaches the gateway.
package validate

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrMobile           = errors.New("mobile number must be exactly 10 digits")
	ErrPasswordLength   = errors.New("password must be at least 6 characters")
	ErrPasswordUpper    = errors.New("password must contain an uppercase letter")
	ErrPasswordDigit    = errors.New("password must contain a number")
	ErrPasswordSpecial  = errors.New("password must contain a special character")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrOTP              = errors.New("otp must be exactly 6 digits")
	ErrRequired         = errors.New("this field is required")
	ErrDateRequired     = errors.New("please select a date")
	ErrTaskRequired     = errors.New("please select a task")
)

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Mobile requires exactly ten ASCII digits.
func Mobile(s string) error {
	if !digits(s, 10) {
		return ErrMobile
	}
	return nil
}

// Password requires six or more characters with an uppercase letter, a
// digit and a character that is neither a letter nor a digit.
func Password(s string) error {
	if len([]rune(s)) < 6 {
		return ErrPasswordLength
	}
	var upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r):
			special = true
		}
	}
	switch {
	case !upper:
		return ErrPasswordUpper
	case !digit:
		return ErrPasswordDigit
	case !special:
		return ErrPasswordSpecial
	}
	return nil
}

func Confirm(password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// OTP requires exactly six ASCII digits.
func OTP(s string) error {
	if !digits(s, 6) {
		return ErrOTP
	}
	return nil
}

func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	return nil
}

// ManualAttendance requires both a day and a task.
func ManualAttendance(day, taskName string) error {
	if strings.TrimSpace(day) == "" {
		return ErrDateRequired
	}
	if strings.TrimSpace(taskName) == "" {
		return ErrTaskRequired
	}
	return nil
}

// Registration checks every registration field and returns the first
// problem found.
func Registration(name, email, password, confirmation string) error {
	if err := Required(name); err != nil {
		return err
	}
	if err := Required(email); err != nil {
		return err
	}
	if err := Password(password); err != nil {
		return err
	}
	return Confirm(password, confirmation)
}
