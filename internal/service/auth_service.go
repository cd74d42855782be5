package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-git-cms/internal/model"
	"go-git-cms/pkg/apierror"
)

// AuthService issues and validates admin session tokens. The admin panel has
// a single principal configured from the environment; there is no user store.
type AuthService struct {
	jwtSecret    []byte
	accessTTL    time.Duration
	adminEmail   string
	passwordHash string
}

func NewAuthService(jwtSecret string, accessTTL time.Duration, adminEmail string, passwordHash string) *AuthService {
	return &AuthService{
		jwtSecret:    []byte(jwtSecret),
		accessTTL:    accessTTL,
		adminEmail:   strings.ToLower(strings.TrimSpace(adminEmail)),
		passwordHash: passwordHash,
	}
}

func (s *AuthService) Login(email string, password string) (model.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != s.adminEmail {
		return model.TokenPair{}, apierror.New("UNAUTHORIZED", "invalid credentials", "", http.StatusUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return model.TokenPair{}, apierror.New("UNAUTHORIZED", "invalid credentials", "", http.StatusUnauthorized)
	}

	now := time.Now()
	claims := model.AuthClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{AccessToken: token, ExpiresIn: int64(s.accessTTL.Seconds())}, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*model.AuthClaims, error) {
	claims := &model.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, model.ErrUnauthorized
	}

	return claims, nil
}
