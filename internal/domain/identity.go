package domain

import "regexp"

// IdentityKind distingue las dos claves de búsqueda de un mismo User.
type IdentityKind int

const (
	IdentityByID IdentityKind = iota
	IdentityByEmail
)

// Identity es la unión etiquetada con la que un caller direcciona a un usuario:
// por ID canónico o por email (posiblemente derivado de una wallet address).
// Ambas claves resuelven al mismo User; nunca deben crear registros divergentes.
type Identity struct {
	Kind  IdentityKind
	Value string
}

// IdentityFromID construye una identidad por ID de usuario.
func IdentityFromID(userID string) Identity {
	return Identity{Kind: IdentityByID, Value: userID}
}

// IdentityFromEmail construye una identidad por email.
func IdentityFromEmail(email string) Identity {
	return Identity{Kind: IdentityByEmail, Value: email}
}

// NewIdentity honra userID con preferencia sobre email cuando ambos vienen.
// Devuelve ErrInvalidInput si no viene ninguno.
func NewIdentity(userID, email string) (Identity, error) {
	switch {
	case userID != "":
		return IdentityFromID(userID), nil
	case email != "":
		return IdentityFromEmail(email), nil
	default:
		return Identity{}, ErrInvalidInput
	}
}

// Valid indica si la identidad tiene clave.
func (i Identity) Valid() bool { return i.Value != "" }

var walletAddressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsWalletAddress valida el formato de una dirección EVM.
func IsWalletAddress(address string) bool {
	return walletAddressRe.MatchString(address)
}

// EmailFromWalletAddress deriva la clave email de una cuenta externa.
// Los colaboradores registran/loguean wallets bajo este email sintético.
func EmailFromWalletAddress(address string) string {
	return address + "@base.com"
}
