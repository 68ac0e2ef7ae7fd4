package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfarer/internal/apperr"
)

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	c := NewCodec("test-secret", time.Hour)

	raw, err := c.Sign(42)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 5*time.Second)
}

func TestCodec_Expired(t *testing.T) {
	t.Parallel()

	c := NewCodec("test-secret", -time.Minute)
	raw, err := c.Sign(1)
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, apperr.ErrExpiredToken)
}

func TestCodec_Invalid(t *testing.T) {
	t.Parallel()

	c := NewCodec("test-secret", time.Hour)
	other := NewCodec("other-secret", time.Hour)

	fromOther, err := other.Sign(1)
	require.NoError(t, err)

	zeroSubject, err := c.Sign(0)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "garbage", raw: "not.a.token"},
		{name: "empty", raw: ""},
		{name: "wrong secret", raw: fromOther},
		{name: "zero subject", raw: zeroSubject},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := c.Verify(tc.raw)
			assert.ErrorIs(t, err, apperr.ErrInvalidToken)
		})
	}
}
