package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_upper", "Test@EXAMPLE.COM", true},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"too_long", "a" + string(make([]byte, 250)) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidEmail(tt.email), "Email: %s", tt.email)
		})
	}
}

func TestIsValidLink(t *testing.T) {
	assert.True(t, IsValidLink("https://example.com/recipe.pdf"))
	assert.True(t, IsValidLink("http://example.com"))
	assert.False(t, IsValidLink("ftp://example.com/x"))
	assert.False(t, IsValidLink("example.com/recipe"))
	assert.False(t, IsValidLink("https://"))
	assert.False(t, IsValidLink("https://example.com/"+string(make([]byte, 260))))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, bad)
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []uint
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single", "3", []uint{3}, false},
		{"several", "1,2, 3", []uint{1, 2, 3}, false},
		{"trailing_comma", "1,2,", []uint{1, 2}, false},
		{"garbage", "1,x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDList(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlag(t *testing.T) {
	for _, on := range []string{"1", "true", "TRUE", "yes", "on"} {
		assert.True(t, ParseFlag(on), on)
	}
	for _, off := range []string{"", "0", "false", "nope"} {
		assert.False(t, ParseFlag(off), off)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Vegan", SanitizeString("  Ve\x00gan\x07 "))
	assert.Equal(t, "line\nbreak", SanitizeString("line\nbreak"))
}
