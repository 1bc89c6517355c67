package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

const sessionValidity = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid session token")

// Claims embeds the registered JWT claims plus the session identity
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Phone  string `json:"phone"`
	Email  string `json:"email,omitempty"`
}

// AuthService exchanges verified phone numbers for signed session tokens
type AuthService struct {
	store  storage.Store
	secret []byte
}

func NewAuthService(store storage.Store, secret []byte) *AuthService {
	return &AuthService{store: store, secret: secret}
}

// ExchangeVerifiedPhone looks up the user for a phone that has just passed
// OTP verification, creating one on first login. isNewUser tells the client
// to route to the profile-completion step.
func (s *AuthService) ExchangeVerifiedPhone(phone string) (token string, user *models.User, isNewUser bool, err error) {
	user, err = s.store.GetUserByPhone(phone)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		isNewUser = true
		user, err = s.store.CreateUser(&models.User{Phone: phone})
		if err != nil {
			return "", nil, false, fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return "", nil, false, err
	}

	token, err = s.GenerateToken(user)
	if err != nil {
		return "", nil, false, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, user, isNewUser, nil
}

// GenerateToken signs a 30-day HS256 session token for the user
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionValidity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: user.UserID,
		Phone:  user.Phone,
		Email:  user.Email,
	})

	return token.SignedString(s.secret)
}

// ParseToken validates a session token and returns its claims
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
