package utils

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("operator@stellar.io", true))
	assert.NoError(t, ValidateEmail("", false))
	assert.Error(t, ValidateEmail("", true))
	assert.Error(t, ValidateEmail("not-an-email", true))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret123"))
	assert.Error(t, ValidatePassword("abc"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", MaxPasswordLength+1)))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("terminal", "app_id", true))
	assert.NoError(t, ValidateID("secretRoom", "app_id", true))
	assert.Error(t, ValidateID("../etc", "app_id", true))
	assert.Error(t, ValidateID("", "app_id", true))
	assert.Error(t, ValidateID("bad\x00id", "app_id", true))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":       "report.pdf",
		"my file (1).txt":  "my_file__1_.txt",
		"../../etc/passwd": ".._.._etc_passwd",
		"":                 "file",
		"..":               "file",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestHasherTeeReader(t *testing.T) {
	h := DefaultHasher()
	r, sum := h.TeeReader(strings.NewReader("stellar"))
	_, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, h.HashString("stellar"), sum())
}

func TestHashFieldsOrderIndependent(t *testing.T) {
	h := DefaultHasher()
	assert.Equal(t, h.HashFields("a", "b"), h.HashFields("b", "a"))
	assert.NotEqual(t, h.HashFields("a", "b"), h.HashFields("a", "c"))
}
