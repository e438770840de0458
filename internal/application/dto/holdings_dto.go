package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserQuantityRequest body para operaciones sobre el holding de un usuario.
// UserID tiene preferencia sobre Email cuando vienen ambos.
type UserQuantityRequest struct {
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// StockQuantityRequest body para operaciones de stock de producto (restock / write-off).
type StockQuantityRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// HoldingResponse snapshot del holding tras una operación.
type HoldingResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// StockResponse snapshot del stock tras una operación.
type StockResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HoldingValueResponse valor monetario del holding (quantity × price).
type HoldingValueResponse struct {
	Quantity int64           `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}
