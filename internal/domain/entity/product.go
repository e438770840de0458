package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Name es único; Image es una
// referencia opaca al archivo (el almacenamiento lo maneja otro servicio).
// Stock se carga junto con el producto cuando el caller lo necesita; puede ser
// nil si el producto aún no tiene fila de stock (se crea perezosamente en 0).
type Product struct {
	ID          string
	Name        string
	Description string
	Image       string
	Price       decimal.Decimal // precio de venta, >= 0
	Stock       *Stock
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockQuantity devuelve la cantidad en stock tratando la ausencia de fila como cero.
func (p *Product) StockQuantity() int64 {
	if p.Stock == nil {
		return 0
	}
	return p.Stock.Quantity
}
