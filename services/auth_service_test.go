package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("s1mple"))
	assert.NoError(t, ValidateUsername("pro_player_99"))
	assert.NoError(t, ValidateUsername("abc"))

	assert.Error(t, ValidateUsername("ab"), "too short")
	assert.Error(t, ValidateUsername(""), "empty")
	assert.Error(t, ValidateUsername("bad name"), "spaces")
	assert.Error(t, ValidateUsername("кириллица"), "non-latin")
	assert.Error(t, ValidateUsername("dash-ed"), "dash")

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateUsername(string(long)), "too long")
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("secret1"))
	assert.NoError(t, ValidatePassword("123456"))
	assert.Error(t, ValidatePassword("12345"))
	assert.Error(t, ValidatePassword(""))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("player@example.com"))
	assert.NoError(t, ValidateEmail("a.b+tag@mail.co"))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("missing@domain"))
	assert.Error(t, ValidateEmail("@example.com"))
	assert.Error(t, ValidateEmail(""))
}
