package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

func newTestAuthService() (*AuthService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return NewAuthService(store, []byte("test-secret")), store
}

func TestExchangeVerifiedPhoneCreatesUser(t *testing.T) {
	svc, store := newTestAuthService()

	token, user, isNewUser, err := svc.ExchangeVerifiedPhone(testPhone)
	require.NoError(t, err)
	assert.True(t, isNewUser)
	assert.NotEmpty(t, token)
	require.NotNil(t, user)
	assert.Equal(t, testPhone, user.Phone)
	assert.NotEmpty(t, user.UserID)

	stored, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, stored.UserID)
}

func TestExchangeVerifiedPhoneReturningUser(t *testing.T) {
	svc, _ := newTestAuthService()

	_, first, isNewUser, err := svc.ExchangeVerifiedPhone(testPhone)
	require.NoError(t, err)
	require.True(t, isNewUser)

	_, second, isNewUser, err := svc.ExchangeVerifiedPhone(testPhone)
	require.NoError(t, err)
	assert.False(t, isNewUser)
	assert.Equal(t, first.UserID, second.UserID)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, store := newTestAuthService()

	user, err := store.CreateUser(&models.User{
		Phone: testPhone,
		Email: "wanjiku@example.com",
	})
	require.NoError(t, err)

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.UserID)
	assert.Equal(t, testPhone, claims.Phone)
	assert.Equal(t, "wanjiku@example.com", claims.Email)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	store := storage.NewMemoryStore()
	signer := NewAuthService(store, []byte("secret-a"))
	verifier := NewAuthService(store, []byte("secret-b"))

	user, err := store.CreateUser(&models.User{Phone: testPhone})
	require.NoError(t, err)

	token, err := signer.GenerateToken(user)
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.ParseToken("not-a-token")
	assert.Error(t, err)
}
