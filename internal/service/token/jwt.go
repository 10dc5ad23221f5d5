package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is what the transport layer learns about the caller.
type Claims struct {
	UserID string
	Name   string
	Role   domain.Role
}

// Service issues and validates HS256 access tokens carrying the actor
// identity and role.
type Service struct {
	secret []byte
	ttl    time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Generate signs an access token for user.
func (s *Service) Generate(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    string(user.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies an access token.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return nil, ErrInvalidToken
	}
	if !domain.ValidRole(domain.Role(role)) {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID: userID,
		Name:   name,
		Role:   domain.Role(role),
	}, nil
}
