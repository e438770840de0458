package entity

import "time"

// User representa un usuario del sistema. Email y Username son únicos.
// Los usuarios creados desde una dirección de wallet usan el email derivado
// (<address>@base.com) como clave de búsqueda; ver domain.Identity.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
