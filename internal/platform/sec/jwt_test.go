// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func sign(t *testing.T, key *rsa.PrivateKey, issuer string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:   "u-1",
		Username: "asha",
		Role:     string(RoleModerator),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

/*
TestTokenVerifier_VerifyToken accepts valid tokens and rejects expired,
foreign and wrongly signed ones.
*/
func TestTokenVerifier_VerifyToken(t *testing.T) {
	key, publicPEM := newKeyPair(t)
	other, _ := newKeyPair(t)

	verifier, err := NewTokenVerifierFromPEM(publicPEM, "yatra-identity")
	require.NoError(t, err)

	claims, err := verifier.VerifyToken(sign(t, key, "yatra-identity", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "moderator", claims.Role)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", sign(t, key, "yatra-identity", -time.Minute)},
		{"other issuer", sign(t, key, "someone-else", time.Hour)},
		{"other key", sign(t, other, "yatra-identity", time.Hour)},
		{"garbage", "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.VerifyToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

/*
TestUserRole_AtLeast follows the role ladder.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleModerator))
	assert.True(t, RoleModerator.AtLeast(RoleModerator))
	assert.False(t, RoleContributor.AtLeast(RoleModerator))
	assert.False(t, UserRole("guest").AtLeast(RoleMember))
}
