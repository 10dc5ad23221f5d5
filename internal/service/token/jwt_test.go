package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/admixflow/admixflow/internal/domain"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("secret", time.Hour)

	signed, err := svc.Generate(&domain.User{
		ID:   "user-1",
		Name: "Lead Pharmacist",
		Role: domain.RolePharmacist,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)

	claims, err := svc.Validate(signed)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Lead Pharmacist", claims.Name)
	assert.Equal(t, domain.RolePharmacist, claims.Role)
}

func TestValidate_WrongSecret(t *testing.T) {
	signed, err := NewService("secret-a", time.Hour).Generate(&domain.User{ID: "user-1", Role: domain.RoleCoordinator})
	assert.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	svc := NewService("secret", -time.Minute)

	signed, err := svc.Generate(&domain.User{ID: "user-1", Role: domain.RoleAuxiliary})
	assert.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_UnknownRole(t *testing.T) {
	svc := NewService("secret", time.Hour)

	signed, err := svc.Generate(&domain.User{ID: "user-1", Role: domain.Role("ADMIN")})
	assert.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	svc := NewService("secret", time.Hour)

	_, err := svc.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
