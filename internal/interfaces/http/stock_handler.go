package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/holdings-api/internal/application/dto"
	"github.com/jhoicas/holdings-api/internal/application/holdings"
	"github.com/jhoicas/holdings-api/internal/domain"
	"github.com/jhoicas/holdings-api/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del motor de holdings (protegido).
// Todas las respuestas usan el sobre uniforme dto.Response.
type StockHandler struct {
	uc *holdings.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *holdings.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

func respondErr(c *fiber.Ctx, err error) error {
	resp := dto.FromError(err)
	return c.Status(resp.StatusCode).JSON(resp)
}

// identityFromParam interpreta el segmento de ruta como email si trae '@',
// como userID en caso contrario.
func identityFromParam(param string) domain.Identity {
	if strings.Contains(param, "@") {
		return domain.IdentityFromEmail(param)
	}
	return domain.IdentityFromID(param)
}

func toHoldingResponse(h *entity.Holding) dto.HoldingResponse {
	return dto.HoldingResponse{
		ID: h.ID, UserID: h.UserID, ProductID: h.ProductID, Quantity: h.Quantity,
	}
}

func toStockResponse(s *entity.Stock) dto.StockResponse {
	return dto.StockResponse{
		ID: s.ID, ProductID: s.ProductID, Quantity: s.Quantity, UpdatedAt: s.UpdatedAt,
	}
}

// AddUserProduct godoc
// @Summary      Asignar unidades del stock al holding de un usuario
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UserQuantityRequest  true  "userId o email, productId, quantity > 0"
// @Success      200   {object}  dto.Response
// @Failure      400   {object}  dto.Response
// @Failure      404   {object}  dto.Response
// @Failure      409   {object}  dto.Response
// @Router       /api/stocks/user/add [post]
func (h *StockHandler) AddUserProduct(c *fiber.Ctx) error {
	var in dto.UserQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, domain.ErrInvalidInput)
	}
	ident, err := domain.NewIdentity(in.UserID, in.Email)
	if err != nil {
		return respondErr(c, err)
	}
	holding, err := h.uc.AddHolding(c.Context(), ident, in.ProductID, in.Quantity)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("producto asignado al usuario", toHoldingResponse(holding)))
}

// GetUserProductStock godoc
// @Summary      Cantidad del producto que posee el usuario
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        userId     path  string  true  "userID o email"
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.Response
// @Failure      404  {object}  dto.Response
// @Router       /api/stocks/user/stock/{userId}/{productId} [get]
func (h *StockHandler) GetUserProductStock(c *fiber.Ctx) error {
	ident := identityFromParam(c.Params("userId"))
	quantity, err := h.uc.GetHolding(c.Context(), ident, c.Params("productId"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("cantidad obtenida", quantity))
}

// GetUserProductValue godoc
// @Summary      Valor monetario del holding (cantidad × precio)
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Param        userId     path  string  true  "userID o email"
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.Response
// @Failure      404  {object}  dto.Response
// @Router       /api/stocks/user/value/{userId}/{productId} [get]
func (h *StockHandler) GetUserProductValue(c *fiber.Ctx) error {
	ident := identityFromParam(c.Params("userId"))
	productID := c.Params("productId")
	quantity, err := h.uc.GetHolding(c.Context(), ident, productID)
	if err != nil {
		return respondErr(c, err)
	}
	value, err := h.uc.GetHoldingValue(c.Context(), ident, productID)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("valor obtenido", dto.HoldingValueResponse{Quantity: quantity, Value: value}))
}

// UpdateUserProduct godoc
// @Summary      Fijar el holding del usuario en una cantidad exacta
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UserQuantityRequest  true  "userId o email, productId, quantity >= 0"
// @Success      200   {object}  dto.Response
// @Router       /api/stocks/user/update [put]
func (h *StockHandler) UpdateUserProduct(c *fiber.Ctx) error {
	var in dto.UserQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, domain.ErrInvalidInput)
	}
	ident, err := domain.NewIdentity(in.UserID, in.Email)
	if err != nil {
		return respondErr(c, err)
	}
	holding, err := h.uc.SetHolding(c.Context(), ident, in.ProductID, in.Quantity)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("cantidad actualizada", toHoldingResponse(holding)))
}

// IncrementUserProduct godoc
// @Summary      Incrementar el holding del usuario (resta del stock)
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UserQuantityRequest  true  "userId o email, productId, quantity > 0"
// @Success      200   {object}  dto.Response
// @Router       /api/stocks/user/increment [put]
func (h *StockHandler) IncrementUserProduct(c *fiber.Ctx) error {
	return h.adjustUserProduct(c, +1)
}

// DecrementUserProduct godoc
// @Summary      Decrementar el holding del usuario (devuelve al stock)
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UserQuantityRequest  true  "userId o email, productId, quantity > 0"
// @Success      200   {object}  dto.Response
// @Router       /api/stocks/user/decrement [put]
func (h *StockHandler) DecrementUserProduct(c *fiber.Ctx) error {
	return h.adjustUserProduct(c, -1)
}

func (h *StockHandler) adjustUserProduct(c *fiber.Ctx, sign int64) error {
	var in dto.UserQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return respondErr(c, domain.ErrInvalidInput)
	}
	ident, err := domain.NewIdentity(in.UserID, in.Email)
	if err != nil {
		return respondErr(c, err)
	}
	holding, err := h.uc.Adjust(c.Context(), ident, in.ProductID, sign*in.Quantity)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("cantidad ajustada", toHoldingResponse(holding)))
}

// IncrementStock godoc
// @Summary      Incrementar el stock del producto (restock)
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockQuantityRequest  true  "productId, quantity > 0"
// @Success      200   {object}  dto.Response
// @Router       /api/stocks/incrementStock [put]
func (h *StockHandler) IncrementStock(c *fiber.Ctx) error {
	return h.adjustStock(c, +1)
}

// DecrementStock godoc
// @Summary      Decrementar el stock del producto (write-off)
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockQuantityRequest  true  "productId, quantity > 0"
// @Success      200   {object}  dto.Response
// @Router       /api/stocks/decrementStock [put]
func (h *StockHandler) DecrementStock(c *fiber.Ctx) error {
	return h.adjustStock(c, -1)
}

func (h *StockHandler) adjustStock(c *fiber.Ctx, sign int64) error {
	var in dto.StockQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return respondErr(c, domain.ErrInvalidInput)
	}
	stock, err := h.uc.AdjustStock(c.Context(), in.ProductID, sign*in.Quantity)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("stock ajustado", toStockResponse(stock)))
}

// UpdateStock godoc
// @Summary      Fijar el stock del producto en una cantidad exacta
// @Tags         stocks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockQuantityRequest  true  "productId, quantity >= 0"
// @Success      200   {object}  dto.Response
// @Router       /api/stocks/updateStock [put]
func (h *StockHandler) UpdateStock(c *fiber.Ctx) error {
	var in dto.StockQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, domain.ErrInvalidInput)
	}
	stock, err := h.uc.SetStock(c.Context(), in.ProductID, in.Quantity)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("stock actualizado", toStockResponse(stock)))
}

// FlushCache godoc
// @Summary      Vaciar toda la caché (administrativo)
// @Tags         stocks
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Response
// @Router       /api/stocks/cache [delete]
func (h *StockHandler) FlushCache(c *fiber.Ctx) error {
	if err := h.uc.FlushCache(c.Context()); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("caché vaciada", nil))
}
