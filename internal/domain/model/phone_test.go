package model

import (
	"errors"
	"testing"

	"restaurant-offer-service/internal/domain"
)

func TestValidatePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid 10 digits", "0701234567", nil},
		{"valid 11 digits", "07012345698", nil},
		{"valid with spaces and hyphens", "070-123 45 67", nil},
		{"eight-digit ascending run allowed", "0712345678", nil},
		{"too short", "123", domain.ErrPhoneFormat},
		{"too long", "070123456789", domain.ErrPhoneFormat},
		{"no leading zero", "4701234567", domain.ErrPhoneFormat},
		{"second digit zero", "0001234567", domain.ErrPhoneFormat},
		{"letters", "07O1234567", domain.ErrPhoneFormat},
		{"empty", "", domain.ErrPhoneFormat},
		{"repeated digit spam", "0711111111", domain.ErrPhoneRepeated},
		{"long repeat run 11 digits", "07111111115", domain.ErrPhoneRepeated},
		{"ascending sequence", "0123456789", domain.ErrPhoneSequential},
		{"descending sequence", "0987654321", domain.ErrPhoneSequential},
		{"low variety tail", "07012121212", domain.ErrPhoneLowVariety},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePhone(tc.input)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidatePhone(%q) = %v, want nil", tc.input, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidatePhone(%q) = %v, want %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"+46701234567", "0701234567"},
		{"0046701234567", "0701234567"},
		{"0701234567", "0701234567"},
		{"070-123 45 67", "0701234567"},
		{"+46 70 123 45 67", "0701234567"},
	}
	for _, tc := range cases {
		if got := NormalizePhone(tc.input); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
