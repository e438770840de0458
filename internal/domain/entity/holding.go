package entity

import "time"

// Holding representa las unidades de un producto que posee un usuario.
// A lo sumo una fila por par (usuario, producto); el motor la crea
// perezosamente en 0 con semántica find-or-create.
// Invariante: Quantity >= 0 en todo momento.
type Holding struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
