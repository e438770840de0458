package repository

import "github.com/jhoicas/holdings-api/internal/domain/entity"

// HoldingRepository define el puerto de persistencia para Holding (user × product).
// La unicidad del par se garantiza con find-or-create bajo el lock de stock del
// producto, nunca insertando y atrapando el duplicado.
type HoldingRepository interface {
	Get(userID, productID string) (*entity.Holding, error)
	GetForUpdate(userID, productID string) (*entity.Holding, error)
	Create(holding *entity.Holding) error
	UpdateQuantity(holdingID string, quantity int64) error
}
