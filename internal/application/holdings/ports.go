package holdings

import (
	"context"

	"github.com/jhoicas/holdings-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor: o se
// persisten holding y stock juntos, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		holdingRepo repository.HoldingRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Cache es la capacidad de caché inyectada al motor. Los valores se serializan
// como JSON. La corrección del motor no depende de expiración: las entradas
// pueden vivir para siempre o expirar arbitrariamente temprano.
type Cache interface {
	// Get deserializa en dest y reporta si la clave existía.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Del(ctx context.Context, keys ...string) error
	FlushAll(ctx context.Context) error
}
