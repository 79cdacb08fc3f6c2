package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("Rahim Uddin", "rahim@example.com", "secret123", "")
	require.NoError(t, err)

	assert.Equal(t, ROLE_EMPLOYEE, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, u.CheckPassword("secret123"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		role     string
	}{
		{"short password", "Rahim", "rahim@example.com", "123", ROLE_EMPLOYEE},
		{"invalid email", "Rahim", "not-an-email", "secret123", ROLE_EMPLOYEE},
		{"unknown role", "Rahim", "rahim@example.com", "secret123", "owner"},
		{"short name", "Ra", "rahim@example.com", "secret123", ROLE_ADMIN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateUser(tt.username, tt.email, tt.password, tt.role)
			assert.Error(t, err)
		})
	}
}

func TestUserSetPassword(t *testing.T) {
	u := &User{Role: ROLE_ADMIN}
	require.NoError(t, u.SetPassword("another-secret"))

	assert.True(t, u.CheckPassword("another-secret"))
	assert.True(t, u.IsAdmin())
}
