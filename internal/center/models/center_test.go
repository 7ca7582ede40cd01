package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vaxledger/pkg/domain"
	dErrors "vaxledger/pkg/domain-errors"
)

func TestNewCenter(t *testing.T) {
	now := time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC)

	t.Run("valid center is registered", func(t *testing.T) {
		c, err := NewCenter(1234567890, "  Municipal Vac #12, Nagonia ", "0xA", now)
		require.NoError(t, err)
		assert.Equal(t, "Municipal Vac #12, Nagonia", c.Name)
		assert.True(t, c.Registered)
		assert.Equal(t, now, c.RegisteredAt)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := map[string]struct {
			name    string
			address id.Address
		}{
			"empty name":    {name: " ", address: "0xA"},
			"long name":     {name: strings.Repeat("x", 129), address: "0xA"},
			"empty address": {name: "Fake Vaccines", address: ""},
		}
		for label, tc := range cases {
			_, err := NewCenter(666, tc.name, tc.address, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), label)
		}
	})
}
