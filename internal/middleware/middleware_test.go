package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/models"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, "header %q", tt.header)
		assert.Equal(t, tt.token, token, "header %q", tt.header)
	}
}

func TestAuthenticate(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour)
	user := &models.User{ID: 42, Email: "alice@example.com"}
	token, err := manager.Generate(user)
	require.NoError(t, err)

	userID, email, err := authenticate(manager, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "alice@example.com", email)

	_, _, err = authenticate(manager, token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))

	other := auth.NewJWTManager("other-secret", time.Hour)
	_, _, err = authenticate(other, "Bearer "+token)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Zero(t, GetUserID(ctx))
	assert.Empty(t, GetEmail(ctx))
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithUser(ctx, 7, "bob@example.com")
	assert.Equal(t, int64(7), GetUserID(ctx))
	assert.Equal(t, "bob@example.com", GetEmail(ctx))
}
