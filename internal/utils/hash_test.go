package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("token")

	assert.Len(t, fp, 64)
	assert.Equal(t, fp, Fingerprint("token"), "fingerprint must be deterministic")
	assert.NotEqual(t, fp, Fingerprint("token2"))
	assert.NotContains(t, fp, "token")
}

func TestConstantTimeEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "equal", a: "s3cr3t-value", b: "s3cr3t-value", want: true},
		{name: "both empty", a: "", b: "", want: true},
		{name: "different same length", a: "aaaa", b: "aaab"},
		{name: "prefix", a: "secret", b: "secret-longer"},
		{name: "empty vs value", a: "", b: "x"},
		{name: "case sensitive", a: "Secret", b: "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConstantTimeEqual(tt.a, tt.b))
		})
	}
}
