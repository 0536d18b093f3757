package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("unit-test-secret-key-please-rotate")

func TestGenerateAndValidateToken(t *testing.T) {
	req := require.New(t)
	userID := uuid.NewString()

	token, err := GenerateToken(testSecret, userID, time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(testSecret, token)
	req.NoError(err)
	req.Equal(userID, claims.UserID)
	req.Equal("livehub", claims.Issuer)
}

func TestValidateToken_Rejections(t *testing.T) {
	req := require.New(t)
	userID := uuid.NewString()

	expired, err := GenerateToken(testSecret, userID, -time.Minute)
	req.NoError(err)

	foreign, err := GenerateToken([]byte("some-other-secret"), userID, time.Hour)
	req.NoError(err)

	tests := []struct {
		name  string
		token string
	}{
		{"Expired token", expired},
		{"Signed with another secret", foreign},
		{"Garbage", "not-a-jwt"},
		{"Empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(testSecret, tt.token)
			require.Error(t, err)
		})
	}
}
