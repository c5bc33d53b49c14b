package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seva-foundation/darshan-service/internal/domain"
)

func TestParseStatusQuery(t *testing.T) {
	status, err := parseStatusQuery("")
	require.NoError(t, err)
	assert.Nil(t, status)

	status, err = parseStatusQuery("pending_pa")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, domain.DarshanStatusPendingPA, *status)

	status, err = parseStatusQuery(" APPROVED ")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, domain.DarshanStatusApproved, *status)

	_, err = parseStatusQuery("SHIPPED")
	assert.Error(t, err)
}

func TestValidPhoneNumber(t *testing.T) {
	cases := []struct {
		raw   string
		valid bool
	}{
		{"9876543210", true},
		{"+91 98765 43210", true},
		{"98765-43210", true},
		{"12345", false},
		{"", false},
		{"phone number", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.valid, validPhoneNumber(tc.raw), "raw=%q", tc.raw)
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 20, parseInt("", 20))
	assert.Equal(t, 5, parseInt("5", 20))
	assert.Equal(t, 20, parseInt("-3", 20))
	assert.Equal(t, 20, parseInt("abc", 20))
}
