package domain_test

import (
	"testing"

	"github.com/jhoicas/holdings-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIdentity_PrefiereUserID verifica la precedencia: si vienen ambos
// campos, la identidad se construye por ID y el email se ignora.
func TestNewIdentity_PrefiereUserID(t *testing.T) {
	ident, err := domain.NewIdentity("user-123", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.IdentityByID, ident.Kind)
	assert.Equal(t, "user-123", ident.Value)
}

func TestNewIdentity_SoloEmail(t *testing.T) {
	ident, err := domain.NewIdentity("", "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.IdentityByEmail, ident.Kind)
	assert.Equal(t, "ana@example.com", ident.Value)
}

func TestNewIdentity_VaciaEsInvalida(t *testing.T) {
	_, err := domain.NewIdentity("", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIsWalletAddress(t *testing.T) {
	assert.True(t, domain.IsWalletAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"))
	assert.False(t, domain.IsWalletAddress("ana@example.com"))
	assert.False(t, domain.IsWalletAddress("0x123"), "direcciones cortas no son válidas")
	assert.False(t, domain.IsWalletAddress("Ab5801a7D398351b8bE11C439e05C5B3259aeC9B"),
		"sin el prefijo 0x no es una dirección")
	assert.False(t, domain.IsWalletAddress("0xZZ5801a7D398351b8bE11C439e05C5B3259aeC9B"),
		"caracteres fuera de hex no son válidos")
}

func TestEmailFromWalletAddress(t *testing.T) {
	address := "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	assert.Equal(t, address+"@base.com", domain.EmailFromWalletAddress(address))
}
