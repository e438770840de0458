package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/holdings-api/internal/domain"
	"github.com/jhoicas/holdings-api/internal/domain/entity"
	"github.com/jhoicas/holdings-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto. Devuelve nil si no hay fila.
func (r *StockRepo) Get(productID string) (*entity.Stock, error) {
	query := `
		SELECT id, product_id, quantity, updated_at
		FROM stock WHERE product_id = $1`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&s.ID, &s.ProductID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// EnsureForUpdate garantiza que exista la fila de stock (creándola en 0 si
// falta) y la bloquea para update (SELECT FOR UPDATE). Llamar solo dentro de
// una transacción: el lock serializa a los escritores del mismo producto.
func (r *StockRepo) EnsureForUpdate(productID string) (*entity.Stock, error) {
	insert := `
		INSERT INTO stock (id, product_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), insert, uuid.New().String(), productID); err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ensure stock: %w", err)
	}

	query := `
		SELECT id, product_id, quantity, updated_at
		FROM stock WHERE product_id = $1
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, productID).Scan(
		&s.ID, &s.ProductID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// UpdateQuantity fija la cantidad de la fila de stock ya bloqueada.
func (r *StockRepo) UpdateQuantity(stockID string, quantity int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE stock SET quantity = $2, updated_at = now() WHERE id = $1`,
		stockID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update stock quantity: %w", err)
	}
	return nil
}
