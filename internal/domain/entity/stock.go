package entity

import "time"

// Stock representa el pool compartido de unidades de un producto aún no
// asignadas a ningún usuario (relación 1:1 con Product).
// Invariante: Quantity >= 0 en todo momento, incluso en estados transitorios.
type Stock struct {
	ID        string
	ProductID string
	Quantity  int64
	UpdatedAt time.Time
}
