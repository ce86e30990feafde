package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name     string
		cpf      string
		expected bool
	}{
		{
			name:     "valid bare digits",
			cpf:      "52998224725",
			expected: true,
		},
		{
			name:     "valid formatted",
			cpf:      "529.982.247-25",
			expected: true,
		},
		{
			name:     "wrong first check digit",
			cpf:      "52998224735",
			expected: false,
		},
		{
			name:     "wrong second check digit",
			cpf:      "52998224726",
			expected: false,
		},
		{
			name:     "repeated digits checksum trap",
			cpf:      "111.111.111-11",
			expected: false,
		},
		{
			name:     "too short",
			cpf:      "5299822472",
			expected: false,
		},
		{
			name:     "too long",
			cpf:      "529982247251",
			expected: false,
		},
		{
			name:     "empty",
			cpf:      "",
			expected: false,
		},
		{
			name:     "letters only",
			cpf:      "abcdefghijk",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateCPF(tt.cpf))
		})
	}
}

func TestNormalizeCPF(t *testing.T) {
	tests := []struct {
		name     string
		cpf      string
		expected string
	}{
		{
			name:     "formatted",
			cpf:      "529.982.247-25",
			expected: "52998224725",
		},
		{
			name:     "already bare",
			cpf:      "52998224725",
			expected: "52998224725",
		},
		{
			name:     "with spaces",
			cpf:      " 529 982 247 25 ",
			expected: "52998224725",
		},
		{
			name:     "empty",
			cpf:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeCPF(tt.cpf))
		})
	}
}
