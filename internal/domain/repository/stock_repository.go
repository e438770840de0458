package repository

import "github.com/jhoicas/holdings-api/internal/domain/entity"

// StockRepository define el puerto para consultar/actualizar el stock de un producto.
// Las operaciones de escritura del motor se ejecutan dentro de transacciones.
type StockRepository interface {
	Get(productID string) (*entity.Stock, error)
	// EnsureForUpdate garantiza que exista la fila de stock (creándola en 0 si
	// falta) y la bloquea para update (SELECT FOR UPDATE). Serializa a los
	// escritores concurrentes del mismo producto.
	EnsureForUpdate(productID string) (*entity.Stock, error)
	UpdateQuantity(stockID string, quantity int64) error
}
