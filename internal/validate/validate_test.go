package validate

import (
	"errors"
	"testing"
)

func TestMobile(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"9876543210", nil},
		{"987654321", ErrMobile},
		{"98765432100", ErrMobile},
		{"98765a3210", ErrMobile},
		{"", ErrMobile},
		{"٩٨٧٦٥٤٣٢١٠", ErrMobile},
	}
	for _, tt := range tests {
		if got := Mobile(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("Mobile(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"Secret1!", nil},
		{"Ab1!", ErrPasswordLength},
		{"secret1!", ErrPasswordUpper},
		{"Secret!!", ErrPasswordDigit},
		{"Secret12", ErrPasswordSpecial},
		{"Secret 1", nil},
	}
	for _, tt := range tests {
		if got := Password(tt.in); !errors.Is(got, tt.want) {
			t.Errorf("Password(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOTP(t *testing.T) {
	for in, ok := range map[string]bool{
		"123456":  true,
		"12345":   false,
		"1234567": false,
		"12a456":  false,
	} {
		if got := OTP(in) == nil; got != ok {
			t.Errorf("OTP(%q) ok = %v, want %v", in, got, ok)
		}
	}
}

func TestManualAttendance(t *testing.T) {
	if err := ManualAttendance("", "Cooking"); !errors.Is(err, ErrDateRequired) {
		t.Errorf("missing date: %v", err)
	}
	if err := ManualAttendance("2024-03-01", " "); !errors.Is(err, ErrTaskRequired) {
		t.Errorf("missing task: %v", err)
	}
	if err := ManualAttendance("2024-03-01", "Cooking"); err != nil {
		t.Errorf("complete: %v", err)
	}
}

func TestRegistration(t *testing.T) {
	if err := Registration("Priya", "p@b.com", "Secret1!", "Secret1?"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("mismatch: %v", err)
	}
	if err := Registration("", "p@b.com", "Secret1!", "Secret1!"); !errors.Is(err, ErrRequired) {
		t.Errorf("no name: %v", err)
	}
	if err := Registration("Priya", "p@b.com", "Secret1!", "Secret1!"); err != nil {
		t.Errorf("valid: %v", err)
	}
}
