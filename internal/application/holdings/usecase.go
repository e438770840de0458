package holdings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/holdings-api/internal/domain"
	"github.com/jhoicas/holdings-api/internal/domain/entity"
	"github.com/jhoicas/holdings-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// UseCase es el motor de ajustes de inventario: mueve unidades entre el stock
// compartido de un producto y el holding de un usuario en cantidades iguales y
// opuestas, dentro de una transacción que bloquea la fila de stock del
// producto (SELECT FOR UPDATE). Ese lock serializa a todos los escritores del
// mismo producto — y por tanto del mismo par (usuario, producto) — cerrando la
// carrera de doble gasto del diseño read-then-write.
//
// Disciplina de caché: escritura durable → invalidación → éxito, en ese orden.
// Si la transacción falla no se invalida nada. La repoblación en lecturas
// ocurre dentro de la transacción, sosteniendo el lock, de modo que un Set con
// dato pre-escritura queda siempre antes del Del del escritor que lo supersede.
type UseCase struct {
	tx       TxRunner
	users    repository.UserRepository
	products repository.ProductRepository
	cache    Cache
}

// NewUseCase construye el motor.
func NewUseCase(tx TxRunner, users repository.UserRepository, products repository.ProductRepository, cache Cache) *UseCase {
	return &UseCase{tx: tx, users: users, products: products, cache: cache}
}

// holdingSnapshot es la entrada de caché de cantidad de holding.
// No es autoritativa: las filas del store son la única fuente de verdad.
type holdingSnapshot struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// GetHolding devuelve la cantidad que el usuario posee del producto, con
// cache-aside. En miss crea (y persiste) el holding en 0 si no existe, para
// que lecturas repetidas converjan a una fila durable en cero.
func (uc *UseCase) GetHolding(ctx context.Context, ident domain.Identity, productID string) (int64, error) {
	userID, err := uc.resolveUser(ctx, ident, productID)
	if err != nil {
		return 0, err
	}

	key := holdingKey(userID, productID)
	var snap holdingSnapshot
	hit, err := uc.cache.Get(ctx, key, &snap)
	if err != nil {
		return 0, err
	}
	if hit {
		return snap.Quantity, nil
	}

	var quantity int64
	err = uc.tx.Run(ctx, func(
		holdingRepo repository.HoldingRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		// El lock de stock serializa el find-or-create del par (usuario, producto).
		if _, err := stockRepo.EnsureForUpdate(productID); err != nil {
			return err
		}
		h, err := uc.findOrCreateHolding(holdingRepo, userID, productID)
		if err != nil {
			return err
		}
		quantity = h.Quantity
		// Repoblar bajo el lock mantiene el orden Set(viejo) < Del(escritor).
		return uc.cache.Set(ctx, key, holdingSnapshot{
			ID: h.ID, UserID: h.UserID, ProductID: h.ProductID, Quantity: h.Quantity,
		})
	})
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

// GetHoldingValue devuelve quantity × product.Price. El precio se relee del
// store en el momento del cálculo, nunca de una entrada de caché.
func (uc *UseCase) GetHoldingValue(ctx context.Context, ident domain.Identity, productID string) (decimal.Decimal, error) {
	quantity, err := uc.GetHolding(ctx, ident, productID)
	if err != nil {
		return decimal.Zero, err
	}
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return product.Price.Mul(decimal.NewFromInt(quantity)), nil
}

// AddHolding mueve quantity unidades del stock del producto al holding del
// usuario. Falla con ErrInsufficientStock si el stock autoritativo (leído bajo
// lock, jamás de caché) no alcanza.
func (uc *UseCase) AddHolding(ctx context.Context, ident domain.Identity, productID string, quantity int64) (*entity.Holding, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	userID, err := uc.resolveUser(ctx, ident, productID)
	if err != nil {
		return nil, err
	}

	var result *entity.Holding
	err = uc.tx.Run(ctx, func(
		holdingRepo repository.HoldingRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		stock, err := stockRepo.EnsureForUpdate(productID)
		if err != nil {
			return err
		}
		if stock.Quantity < quantity {
			return domain.ErrInsufficientStock
		}
		h, err := uc.findOrCreateHolding(holdingRepo, userID, productID)
		if err != nil {
			return err
		}
		h.Quantity += quantity
		h.UpdatedAt = time.Now()
		if err := holdingRepo.UpdateQuantity(h.ID, h.Quantity); err != nil {
			return err
		}
		if err := stockRepo.UpdateQuantity(stock.ID, stock.Quantity-quantity); err != nil {
			return err
		}
		result = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.invalidate(ctx, ident, userID, productID); err != nil {
		return nil, err
	}
	return result, nil
}

// SetHolding fija el holding en una cantidad exacta y ajusta el stock por la
// diferencia. quantity debe ser >= 0.
func (uc *UseCase) SetHolding(ctx context.Context, ident domain.Identity, productID string, quantity int64) (*entity.Holding, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	userID, err := uc.resolveUser(ctx, ident, productID)
	if err != nil {
		return nil, err
	}

	var result *entity.Holding
	err = uc.tx.Run(ctx, func(
		holdingRepo repository.HoldingRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		stock, err := stockRepo.EnsureForUpdate(productID)
		if err != nil {
			return err
		}
		h, err := uc.findOrCreateHolding(holdingRepo, userID, productID)
		if err != nil {
			return err
		}
		difference := quantity - h.Quantity
		if difference > 0 && stock.Quantity < difference {
			return domain.ErrInsufficientStock
		}
		newStock := stock.Quantity - difference
		if newStock < 0 {
			return domain.ErrNegativeStock
		}
		h.Quantity = quantity
		h.UpdatedAt = time.Now()
		if err := holdingRepo.UpdateQuantity(h.ID, h.Quantity); err != nil {
			return err
		}
		if err := stockRepo.UpdateQuantity(stock.ID, newStock); err != nil {
			return err
		}
		result = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.invalidate(ctx, ident, userID, productID); err != nil {
		return nil, err
	}
	return result, nil
}

// Adjust aplica un delta con signo al holding y el delta opuesto al stock:
// es la primitiva detrás de increment (delta > 0) y decrement (delta < 0).
// Toda verificación corre contra las filas bloqueadas, antes de persistir.
func (uc *UseCase) Adjust(ctx context.Context, ident domain.Identity, productID string, delta int64) (*entity.Holding, error) {
	userID, err := uc.resolveUser(ctx, ident, productID)
	if err != nil {
		return nil, err
	}

	var result *entity.Holding
	err = uc.tx.Run(ctx, func(
		holdingRepo repository.HoldingRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		stock, err := stockRepo.EnsureForUpdate(productID)
		if err != nil {
			return err
		}
		if delta > 0 && stock.Quantity < delta {
			return domain.ErrInsufficientStock
		}
		h, err := uc.findOrCreateHolding(holdingRepo, userID, productID)
		if err != nil {
			return err
		}
		newHolding := h.Quantity + delta
		if newHolding < 0 {
			return domain.ErrNegativeQuantity
		}
		newStock := stock.Quantity - delta
		if newStock < 0 {
			return domain.ErrNegativeStock
		}
		h.Quantity = newHolding
		h.UpdatedAt = time.Now()
		if err := holdingRepo.UpdateQuantity(h.ID, h.Quantity); err != nil {
			return err
		}
		if err := stockRepo.UpdateQuantity(stock.ID, newStock); err != nil {
			return err
		}
		result = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.invalidate(ctx, ident, userID, productID); err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustStock aplica un delta con signo solo al stock del producto (restock /
// write-off). No toca holdings: es la vía sancionada para cambiar el total.
// Crea la fila de stock en 0 si el producto aún no tiene.
func (uc *UseCase) AdjustStock(ctx context.Context, productID string, delta int64) (*entity.Stock, error) {
	return uc.updateStock(ctx, productID, func(current int64) (int64, error) {
		newQty := current + delta
		if newQty < 0 {
			return 0, domain.ErrNegativeStock
		}
		return newQty, nil
	})
}

// SetStock fija el stock del producto en una cantidad exacta >= 0.
func (uc *UseCase) SetStock(ctx context.Context, productID string, quantity int64) (*entity.Stock, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.updateStock(ctx, productID, func(int64) (int64, error) {
		return quantity, nil
	})
}

func (uc *UseCase) updateStock(ctx context.Context, productID string, apply func(current int64) (int64, error)) (*entity.Stock, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Stock
	err := uc.tx.Run(ctx, func(
		_ repository.HoldingRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetByID(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		stock, err := stockRepo.EnsureForUpdate(productID)
		if err != nil {
			return err
		}
		newQty, err := apply(stock.Quantity)
		if err != nil {
			return err
		}
		if err := stockRepo.UpdateQuantity(stock.ID, newQty); err != nil {
			return err
		}
		stock.Quantity = newQty
		stock.UpdatedAt = time.Now()
		result = stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Del(ctx, productStockKey(productID)); err != nil {
		return nil, err
	}
	return result, nil
}

// FlushCache vacía toda la caché. Administrativo: nunca necesario para la
// corrección, solo para recuperación operativa.
func (uc *UseCase) FlushCache(ctx context.Context) error {
	return uc.cache.FlushAll(ctx)
}

// findOrCreateHolding busca el holding del par bajo lock y lo crea en 0 si no
// existe. El caller debe sostener el lock de stock del producto, que es lo que
// garantiza la unicidad del par sin insertar-y-atrapar-duplicado.
func (uc *UseCase) findOrCreateHolding(holdingRepo repository.HoldingRepository, userID, productID string) (*entity.Holding, error) {
	h, err := holdingRepo.GetForUpdate(userID, productID)
	if err != nil {
		return nil, err
	}
	if h != nil {
		return h, nil
	}
	now := time.Now()
	h = &entity.Holding{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := holdingRepo.Create(h); err != nil {
		return nil, err
	}
	return h, nil
}

// invalidate borra las claves cuyas filas mutó una escritura: la entrada de
// resolución con la grafía usada por el caller, la de holding canonizada al
// userID y la de stock del producto. Se llama solo tras el commit.
func (uc *UseCase) invalidate(ctx context.Context, ident domain.Identity, userID, productID string) error {
	return uc.cache.Del(ctx,
		resolutionKey(ident, productID),
		holdingKey(userID, productID),
		productStockKey(productID),
	)
}
