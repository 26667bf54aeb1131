package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizePII(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "malaysian IC number",
			input: "my ic is 900101-14-5678 thanks",
			want:  "my ic is [IC_REDACTED] thanks",
		},
		{
			name:  "12 digit account number keeps surrounding text",
			input: "transfer to 123456789012 please",
			want:  "transfer to [ACCT_REDACTED] please",
		},
		{
			name:  "8 digit account number",
			input: "acct 12345678",
			want:  "acct [ACCT_REDACTED]",
		},
		{
			name:  "phone number with country code",
			input: "call +60123456789 now",
			want:  "call [PHONE_REDACTED] now",
		},
		{
			name:  "email address",
			input: "email me at someone@example.com",
			want:  "email me at [EMAIL_REDACTED]",
		},
		{
			name:  "multiple kinds in one string",
			input: "900101-14-5678 and someone@example.com",
			want:  "[IC_REDACTED] and [EMAIL_REDACTED]",
		},
		{
			name:  "clean text untouched",
			input: "send RM 50 to Ali",
			want:  "send RM 50 to Ali",
		},
		{
			name:  "short digit runs untouched",
			input: "pin 1234 code 56789",
			want:  "pin 1234 code 56789",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizePII(tt.input))
		})
	}
}
