package holdings_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/holdings-api/internal/application/holdings"
	"github.com/jhoicas/holdings-api/internal/domain"
	"github.com/jhoicas/holdings-api/internal/domain/entity"
	"github.com/jhoicas/holdings-api/internal/domain/repository"
	"github.com/jhoicas/holdings-api/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del motor de holdings contra un store en memoria.
//
// El fakeTxRunner serializa las transacciones con un mutex, igual que el lock
// FOR UPDATE de la fila de stock serializa a los escritores en PostgreSQL, y
// revierte los mapas si fn falla. La caché es la MemoryCache real: Evict
// permite simular expiración arbitraria y verificar que la corrección nunca
// depende de lo que haya (o no haya) cacheado.
// ──────────────────────────────────────────────────────────────────────────────

// ── store en memoria ──────────────────────────────────────────────────────────

type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*entity.User    // por id
	products map[string]*entity.Product // por id
	stocks   map[string]*entity.Stock   // por productID
	holdings map[string]*entity.Holding // por userID|productID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*entity.User),
		products: make(map[string]*entity.Product),
		stocks:   make(map[string]*entity.Stock),
		holdings: make(map[string]*entity.Holding),
	}
}

func holdingMapKey(userID, productID string) string { return userID + "|" + productID }

func (s *fakeStore) snapshot() (map[string]*entity.Stock, map[string]*entity.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stocks := make(map[string]*entity.Stock, len(s.stocks))
	for k, v := range s.stocks {
		c := *v
		stocks[k] = &c
	}
	hs := make(map[string]*entity.Holding, len(s.holdings))
	for k, v := range s.holdings {
		c := *v
		hs[k] = &c
	}
	return stocks, hs
}

func (s *fakeStore) restore(stocks map[string]*entity.Stock, hs map[string]*entity.Holding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stocks = stocks
	s.holdings = hs
}

// ── repos fake ────────────────────────────────────────────────────────────────

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(u *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *u
	r.store.users[u.ID] = &c
	return nil
}

func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(u *entity.User) error {
	return r.Create(u)
}

func (r *fakeUserRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.users, id)
	return nil
}

type fakeProductRepo struct{ store *fakeStore }

func (r *fakeProductRepo) Create(p *entity.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := *p
	r.store.products[p.ID] = &c
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p, ok := r.store.products[id]; ok {
		c := *p
		if s, ok := r.store.stocks[id]; ok {
			sc := *s
			c.Stock = &sc
		}
		return &c, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByName(name string) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.products {
		if p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	return r.Create(p)
}

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.products, id)
	return nil
}

type fakeStockRepo struct{ store *fakeStore }

func (r *fakeStockRepo) Get(productID string) (*entity.Stock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if s, ok := r.store.stocks[productID]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (r *fakeStockRepo) EnsureForUpdate(productID string) (*entity.Stock, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.products[productID]; !ok {
		return nil, domain.ErrNotFound
	}
	s, ok := r.store.stocks[productID]
	if !ok {
		s = &entity.Stock{
			ID:        uuid.New().String(),
			ProductID: productID,
			Quantity:  0,
			UpdatedAt: time.Now(),
		}
		r.store.stocks[productID] = s
	}
	c := *s
	return &c, nil
}

func (r *fakeStockRepo) UpdateQuantity(stockID string, quantity int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.stocks {
		if s.ID == stockID {
			s.Quantity = quantity
			s.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeHoldingRepo struct{ store *fakeStore }

func (r *fakeHoldingRepo) Get(userID, productID string) (*entity.Holding, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if h, ok := r.store.holdings[holdingMapKey(userID, productID)]; ok {
		c := *h
		return &c, nil
	}
	return nil, nil
}

func (r *fakeHoldingRepo) GetForUpdate(userID, productID string) (*entity.Holding, error) {
	return r.Get(userID, productID)
}

func (r *fakeHoldingRepo) Create(h *entity.Holding) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := holdingMapKey(h.UserID, h.ProductID)
	if _, ok := r.store.holdings[key]; ok {
		return domain.ErrDuplicate
	}
	c := *h
	r.store.holdings[key] = &c
	return nil
}

func (r *fakeHoldingRepo) UpdateQuantity(holdingID string, quantity int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, h := range r.store.holdings {
		if h.ID == holdingID {
			h.Quantity = quantity
			h.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrNotFound
}

// fakeTxRunner serializa transacciones con un mutex y revierte stocks/holdings
// si fn falla, imitando atomicidad + FOR UPDATE.
type fakeTxRunner struct {
	store *fakeStore
	txMu  sync.Mutex
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(
	holdingRepo repository.HoldingRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	stocks, hs := r.store.snapshot()
	err := fn(&fakeHoldingRepo{r.store}, &fakeStockRepo{r.store}, &fakeProductRepo{r.store})
	if err != nil {
		r.store.restore(stocks, hs)
		return err
	}
	return nil
}

// ── fixture ───────────────────────────────────────────────────────────────────

type engineFixture struct {
	uc    *holdings.UseCase
	store *fakeStore
	cache *cache.MemoryCache
}

func newEngineFixture() *engineFixture {
	store := newFakeStore()
	mem := cache.NewMemoryCache()
	uc := holdings.NewUseCase(
		&fakeTxRunner{store: store},
		&fakeUserRepo{store: store},
		&fakeProductRepo{store: store},
		mem,
	)
	return &engineFixture{uc: uc, store: store, cache: mem}
}

func (f *engineFixture) seedUser(email string) *entity.User {
	u := &entity.User{
		ID:        uuid.New().String(),
		Email:     email,
		Username:  email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.store.users[u.ID] = u
	return u
}

func (f *engineFixture) seedProduct(name string, price decimal.Decimal, stockQty int64) *entity.Product {
	p := &entity.Product{
		ID:        uuid.New().String(),
		Name:      name,
		Price:     price,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.store.products[p.ID] = p
	f.store.stocks[p.ID] = &entity.Stock{
		ID:        uuid.New().String(),
		ProductID: p.ID,
		Quantity:  stockQty,
		UpdatedAt: time.Now(),
	}
	return p
}

func (f *engineFixture) stockQty(productID string) int64 {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if s, ok := f.store.stocks[productID]; ok {
		return s.Quantity
	}
	return 0
}

func (f *engineFixture) holdingQty(userID, productID string) int64 {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if h, ok := f.store.holdings[holdingMapKey(userID, productID)]; ok {
		return h.Quantity
	}
	return 0
}

// ── lecturas ──────────────────────────────────────────────────────────────────

// TestGetHolding_CreaFilaEnCero verifica que la primera lectura de un par
// (usuario, producto) inexistente devuelve 0, persiste la fila en cero y
// deja la entrada en caché para lecturas siguientes.
func TestGetHolding_CreaFilaEnCero(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	qty, err := f.uc.GetHolding(ctx, domain.IdentityFromID(u.ID), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty, "un par nuevo debe leerse como 0")

	// La fila quedó persistida en cero, no solo en caché
	assert.Len(t, f.store.holdings, 1, "la lectura debe crear exactamente una fila")
	assert.Equal(t, int64(0), f.holdingQty(u.ID, p.ID))

	// Segunda lectura: hit de caché, misma respuesta, ninguna fila extra
	qty2, err := f.uc.GetHolding(ctx, domain.IdentityFromID(u.ID), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty2)
	assert.Len(t, f.store.holdings, 1)
}

// TestGetHolding_EmailEIDConvergen verifica que direccionar por email y por ID
// al mismo usuario resuelve a la misma fila, nunca a registros divergentes.
func TestGetHolding_EmailEIDConvergen(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("bruno@example.com")
	p := f.seedProduct("gorra", decimal.NewFromInt(5), 10)
	ctx := context.Background()

	_, err := f.uc.GetHolding(ctx, domain.IdentityFromEmail(u.Email), p.ID)
	require.NoError(t, err)
	_, err = f.uc.GetHolding(ctx, domain.IdentityFromID(u.ID), p.ID)
	require.NoError(t, err)

	assert.Len(t, f.store.holdings, 1,
		"email e ID del mismo usuario deben compartir una sola fila de holding")
}

func TestGetHolding_UsuarioInexistente(t *testing.T) {
	f := newEngineFixture()
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)

	_, err := f.uc.GetHolding(context.Background(), domain.IdentityFromEmail("nadie@example.com"), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetHolding_ProductoInexistente(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")

	_, err := f.uc.GetHolding(context.Background(), domain.IdentityFromID(u.ID), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetHolding_IdentidadVacia(t *testing.T) {
	f := newEngineFixture()
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)

	_, err := f.uc.GetHolding(context.Background(), domain.Identity{}, p.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestGetHoldingValue verifica quantity × price y que el precio se relee del
// store: un cambio de precio se refleja de inmediato aunque haya caché tibia.
func TestGetHoldingValue_PrecioSiempreFresco(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.RequireFromString("2.50"), 10)
	ctx := context.Background()

	_, err := f.uc.AddHolding(ctx, domain.IdentityFromID(u.ID), p.ID, 4)
	require.NoError(t, err)

	value, err := f.uc.GetHoldingValue(ctx, domain.IdentityFromID(u.ID), p.ID)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.RequireFromString("10.00")),
		"4 unidades × 2.50 = 10.00, se obtuvo %s", value)

	// Cambia el precio en el store; el valor debe reflejarlo sin invalidar nada
	f.store.mu.Lock()
	f.store.products[p.ID].Price = decimal.RequireFromString("3.00")
	f.store.mu.Unlock()

	value, err = f.uc.GetHoldingValue(ctx, domain.IdentityFromID(u.ID), p.ID)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.RequireFromString("12.00")),
		"el precio debe releerse del store, se obtuvo %s", value)
}

// ── escrituras de holding ─────────────────────────────────────────────────────

// TestAddHolding_MueveUnidades verifica la conservación: cada unidad que entra
// al holding sale del stock, y la suma holding+stock se mantiene.
func TestAddHolding_MueveUnidades(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	h, err := f.uc.AddHolding(ctx, domain.IdentityFromID(u.ID), p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), h.Quantity)
	assert.Equal(t, int64(6), f.stockQty(p.ID))
	assert.Equal(t, int64(10), f.holdingQty(u.ID, p.ID)+f.stockQty(p.ID),
		"holding + stock debe conservar el total")
}

func TestAddHolding_StockInsuficiente(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)

	_, err := f.uc.AddHolding(context.Background(), domain.IdentityFromID(u.ID), p.ID, 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.stockQty(p.ID), "un add fallido no debe tocar el stock")
	assert.Equal(t, int64(0), f.holdingQty(u.ID, p.ID))
}

func TestAddHolding_CantidadInvalida(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	_, err := f.uc.AddHolding(ctx, domain.IdentityFromID(u.ID), p.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddHolding(ctx, domain.IdentityFromID(u.ID), p.ID, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestEscenario_CompradoresSecuenciales recorre la secuencia de referencia:
// stock 10; A compra 4 (stock 6); A devuelve 2 (stock 8); B intenta 9 y falla
// porque solo quedan 8, aunque el total histórico fuera 10.
func TestEscenario_CompradoresSecuenciales(t *testing.T) {
	f := newEngineFixture()
	a := f.seedUser("a@example.com")
	b := f.seedUser("b@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	_, err := f.uc.AddHolding(ctx, domain.IdentityFromID(a.ID), p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.stockQty(p.ID))

	_, err = f.uc.Adjust(ctx, domain.IdentityFromID(a.ID), p.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, int64(8), f.stockQty(p.ID))
	assert.Equal(t, int64(2), f.holdingQty(a.ID, p.ID))

	_, err = f.uc.AddHolding(ctx, domain.IdentityFromID(b.ID), p.ID, 9)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"B no puede comprar 9 cuando solo quedan 8 disponibles")
}

// TestSetHolding_AjustaPorDiferencia verifica que fijar el holding mueve solo
// la diferencia contra el stock, en ambas direcciones.
func TestSetHolding_AjustaPorDiferencia(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	h, err := f.uc.SetHolding(ctx, domain.IdentityFromID(u.ID), p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), h.Quantity)
	assert.Equal(t, int64(3), f.stockQty(p.ID))

	h, err = f.uc.SetHolding(ctx, domain.IdentityFromID(u.ID), p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), h.Quantity)
	assert.Equal(t, int64(8), f.stockQty(p.ID), "bajar el holding devuelve unidades al stock")
}

// TestSetHolding_CeroCreaFila verifica que set a 0 sobre un par nuevo crea la
// fila durable en cero sin mover stock.
func TestSetHolding_CeroCreaFila(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)

	h, err := f.uc.SetHolding(context.Background(), domain.IdentityFromID(u.ID), p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), h.Quantity)
	assert.Len(t, f.store.holdings, 1)
	assert.Equal(t, int64(10), f.stockQty(p.ID))
}

func TestSetHolding_Invalido(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	_, err := f.uc.SetHolding(ctx, domain.IdentityFromID(u.ID), p.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.SetHolding(ctx, domain.IdentityFromID(u.ID), p.ID, 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// TestAdjust_NoNegativo verifica que un decremento jamás deja el holding bajo
// cero, aun cuando el par no existe todavía.
func TestAdjust_NoNegativo(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	_, err := f.uc.Adjust(ctx, domain.IdentityFromID(u.ID), p.ID, -1)
	assert.ErrorIs(t, err, domain.ErrNegativeQuantity)
	assert.Equal(t, int64(10), f.stockQty(p.ID), "el ajuste fallido no debe tocar el stock")
}

func TestAdjust_IncrementoInsuficiente(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 3)

	_, err := f.uc.Adjust(context.Background(), domain.IdentityFromID(u.ID), p.ID, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ── escrituras de stock ───────────────────────────────────────────────────────

// TestAdjustStock_CreaFilaEnRestock verifica que el restock de un producto sin
// fila de stock la crea y aplica el delta en una sola operación.
func TestAdjustStock_CreaFilaEnRestock(t *testing.T) {
	f := newEngineFixture()
	p := &entity.Product{ID: uuid.New().String(), Name: "nuevo", Price: decimal.NewFromInt(1)}
	f.store.products[p.ID] = p

	s, err := f.uc.AdjustStock(context.Background(), p.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), s.Quantity)
	assert.Equal(t, int64(50), f.stockQty(p.ID))
}

func TestAdjustStock_NoNegativo(t *testing.T) {
	f := newEngineFixture()
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)

	_, err := f.uc.AdjustStock(context.Background(), p.ID, -11)
	assert.ErrorIs(t, err, domain.ErrNegativeStock)
	assert.Equal(t, int64(10), f.stockQty(p.ID))
}

func TestSetStock(t *testing.T) {
	f := newEngineFixture()
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	s, err := f.uc.SetStock(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.Quantity)

	_, err = f.uc.SetStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetStock_ProductoInexistente(t *testing.T) {
	f := newEngineFixture()

	_, err := f.uc.SetStock(context.Background(), uuid.New().String(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestAdjustStock_NoTocaHoldings verifica que el restock cambia solo el total
// disponible: los holdings existentes quedan intactos.
func TestAdjustStock_NoTocaHoldings(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	_, err := f.uc.AddHolding(ctx, domain.IdentityFromID(u.ID), p.ID, 4)
	require.NoError(t, err)

	_, err = f.uc.AdjustStock(ctx, p.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(26), f.stockQty(p.ID))
	assert.Equal(t, int64(4), f.holdingQty(u.ID, p.ID))
}

// ── coherencia de caché ───────────────────────────────────────────────────────

// TestCache_EscrituraInvalida verifica la disciplina write-through: tras una
// escritura exitosa la entrada cacheada desaparece y la siguiente lectura
// devuelve el valor nuevo.
func TestCache_EscrituraInvalida(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()
	ident := domain.IdentityFromID(u.ID)

	qty, err := f.uc.GetHolding(ctx, ident, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)

	_, err = f.uc.AddHolding(ctx, ident, p.ID, 4)
	require.NoError(t, err)

	qty, err = f.uc.GetHolding(ctx, ident, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), qty, "la lectura posterior a la escritura no puede ser stale")
}

// TestCache_EscrituraFallidaNoInvalida verifica que una transacción fallida no
// toca la caché: la entrada poblada por la lectura previa sigue siendo válida
// (las filas no cambiaron).
func TestCache_EscrituraFallidaNoInvalida(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()
	ident := domain.IdentityFromID(u.ID)

	_, err := f.uc.GetHolding(ctx, ident, p.ID)
	require.NoError(t, err)
	entries := f.cache.Len()

	_, err = f.uc.AddHolding(ctx, ident, p.ID, 99)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, entries, f.cache.Len(), "una escritura fallida no debe invalidar nada")

	qty, err := f.uc.GetHolding(ctx, ident, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}

// TestCache_ExpiracionArbitraria verifica que la corrección no depende de la
// caché: si una entrada expira en cualquier momento, la siguiente lectura
// repuebla desde el store con el valor correcto.
func TestCache_ExpiracionArbitraria(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()
	ident := domain.IdentityFromID(u.ID)

	_, err := f.uc.AddHolding(ctx, ident, p.ID, 4)
	require.NoError(t, err)
	qty, err := f.uc.GetHolding(ctx, ident, p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(4), qty)

	// Expiración simulada de todas las entradas
	require.NoError(t, f.cache.FlushAll(ctx))

	qty, err = f.uc.GetHolding(ctx, ident, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), qty, "tras expirar, la lectura repuebla desde el store")
}

// TestCache_EscrituraPorEmailInvalidaLecturaPorID reproduce el caso de doble
// grafía: una lectura direccionada por ID puebla la caché y una escritura
// direccionada por email (mismo usuario) debe invalidarla, porque la clave de
// holding se canoniza al userID resuelto.
func TestCache_EscrituraPorEmailInvalidaLecturaPorID(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	qty, err := f.uc.GetHolding(ctx, domain.IdentityFromID(u.ID), p.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), qty)

	_, err = f.uc.AddHolding(ctx, domain.IdentityFromEmail(u.Email), p.ID, 4)
	require.NoError(t, err)

	qty, err = f.uc.GetHolding(ctx, domain.IdentityFromID(u.ID), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), qty,
		"la escritura por email debe invalidar la entrada poblada por ID")
}

func TestFlushCache(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	_, err := f.uc.GetHolding(ctx, domain.IdentityFromID(u.ID), p.ID)
	require.NoError(t, err)
	require.Greater(t, f.cache.Len(), 0)

	require.NoError(t, f.uc.FlushCache(ctx))
	assert.Equal(t, 0, f.cache.Len())
}

// ── concurrencia ──────────────────────────────────────────────────────────────

// TestAddHolding_DobleGastoConcurrente lanza dos compradores sobre un stock que
// solo alcanza para uno. La serialización transaccional debe dejar exactamente
// un éxito y conservar el total.
func TestAddHolding_DobleGastoConcurrente(t *testing.T) {
	f := newEngineFixture()
	a := f.seedUser("a@example.com")
	b := f.seedUser("b@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 10)
	ctx := context.Background()

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := f.uc.AddHolding(ctx, domain.IdentityFromID(userID), p.ID, 7)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var successes, insufficient int
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, successes, "exactamente un comprador debe ganar la carrera")
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(3), f.stockQty(p.ID))
	assert.Equal(t, int64(7), f.holdingQty(a.ID, p.ID)+f.holdingQty(b.ID, p.ID))
}

// TestAdjust_ConcurrenciaConserva aplica N incrementos concurrentes del mismo
// usuario y verifica que la suma holding+stock nunca se corrompe.
func TestAdjust_ConcurrenciaConserva(t *testing.T) {
	f := newEngineFixture()
	u := f.seedUser("ana@example.com")
	p := f.seedProduct("camiseta", decimal.NewFromInt(10), 100)
	ctx := context.Background()
	ident := domain.IdentityFromID(u.ID)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.uc.Adjust(ctx, ident, p.ID, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), f.holdingQty(u.ID, p.ID)+f.stockQty(p.ID),
		"la conservación debe sobrevivir a escritores concurrentes")
	assert.Equal(t, int64(workers), f.holdingQty(u.ID, p.ID))
}
