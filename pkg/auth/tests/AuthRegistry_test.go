package authtests

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

import "github.com/sirgallo/conductor/pkg/auth"


func seedRegistry() *auth.AuthRegistry {
	return auth.NewAuthRegistry(map[string]string{
		"cliente1": "senha123",
		"cliente2": "senha456",
	})
}

func TestVerifyIssuesToken(t *testing.T) {
	registry := seedRegistry()

	token, verifyErr := registry.Verify("cliente1", "senha123")
	require.NoError(t, verifyErr)
	require.NotEmpty(t, token)

	username, exists := registry.UserOf(token)
	assert.True(t, exists)
	assert.Equal(t, "cliente1", username)
}

func TestVerifyIssuesFreshTokenPerSession(t *testing.T) {
	registry := seedRegistry()

	first, firstErr := registry.Verify("cliente1", "senha123")
	require.NoError(t, firstErr)

	second, secondErr := registry.Verify("cliente1", "senha123")
	require.NoError(t, secondErr)

	assert.NotEqual(t, first, second)
}

func TestVerifyWrongPassword(t *testing.T) {
	registry := seedRegistry()

	token, verifyErr := registry.Verify("cliente1", "wrong")
	assert.ErrorIs(t, verifyErr, auth.ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestVerifyUnknownUser(t *testing.T) {
	registry := seedRegistry()

	_, verifyErr := registry.Verify("intruder", "senha123")
	assert.ErrorIs(t, verifyErr, auth.ErrInvalidCredentials)
}

func TestRevokeDropsSession(t *testing.T) {
	registry := seedRegistry()

	token, verifyErr := registry.Verify("cliente2", "senha456")
	require.NoError(t, verifyErr)

	registry.Revoke(token)

	_, exists := registry.UserOf(token)
	assert.False(t, exists)
}
