package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/holdings-api/internal/domain"
	"github.com/jhoicas/holdings-api/internal/domain/entity"
	"github.com/jhoicas/holdings-api/internal/domain/repository"
)

var _ repository.HoldingRepository = (*HoldingRepo)(nil)

// HoldingRepo implementación de HoldingRepository sobre PostgreSQL (usable con pool o tx).
// La tabla lleva UNIQUE (user_id, product_id); la creación ocurre siempre bajo
// el lock de stock del producto, así que el constraint es red de seguridad, no
// mecanismo de control.
type HoldingRepo struct {
	q Querier
}

// NewHoldingRepository construye el adaptador de holdings. Pasar pool o tx (Querier).
func NewHoldingRepository(q Querier) *HoldingRepo {
	return &HoldingRepo{q: q}
}

// Get obtiene el holding del par (usuario, producto). Devuelve nil si no existe.
func (r *HoldingRepo) Get(userID, productID string) (*entity.Holding, error) {
	return r.get(userID, productID, false)
}

// GetForUpdate obtiene el holding y bloquea la fila (SELECT FOR UPDATE).
func (r *HoldingRepo) GetForUpdate(userID, productID string) (*entity.Holding, error) {
	return r.get(userID, productID, true)
}

func (r *HoldingRepo) get(userID, productID string, forUpdate bool) (*entity.Holding, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM user_product WHERE user_id = $1 AND product_id = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var h entity.Holding
	err := r.q.QueryRow(context.Background(), query, userID, productID).Scan(
		&h.ID, &h.UserID, &h.ProductID, &h.Quantity, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get holding: %w", err)
	}
	return &h, nil
}

// Create persiste un holding nuevo.
func (r *HoldingRepo) Create(holding *entity.Holding) error {
	query := `
		INSERT INTO user_product (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		holding.ID, holding.UserID, holding.ProductID, holding.Quantity,
		holding.CreatedAt, holding.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert holding: %w", err)
	}
	return nil
}

// UpdateQuantity fija la cantidad de un holding ya bloqueado.
func (r *HoldingRepo) UpdateQuantity(holdingID string, quantity int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE user_product SET quantity = $2, updated_at = now() WHERE id = $1`,
		holdingID, quantity,
	)
	if err != nil {
		return fmt.Errorf("update holding quantity: %w", err)
	}
	return nil
}
