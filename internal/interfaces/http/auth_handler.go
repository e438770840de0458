package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/holdings-api/internal/application/auth"
	"github.com/jhoicas/holdings-api/internal/application/dto"
	"github.com/jhoicas/holdings-api/internal/domain"
)

// AuthHandler maneja registro y login (público).
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, username, password"
// @Success      201   {object}  dto.Response
// @Failure      409   {object}  dto.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.RegisterUser(in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Response{
		StatusCode: fiber.StatusCreated, Message: "usuario creado", Data: out,
	})
}

// RegisterWithAddress godoc
// @Summary      Registrar usuario desde una wallet address EVM
// @Tags         auth
// @Produce      json
// @Param        address  query  string  true  "dirección 0x..."
// @Success      201  {object}  dto.Response
// @Failure      400  {object}  dto.Response
// @Router       /api/auth/register-with-address [post]
func (h *AuthHandler) RegisterWithAddress(c *fiber.Ctx) error {
	out, err := h.uc.RegisterWithAddress(c.Query("address"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Response{
		StatusCode: fiber.StatusCreated, Message: "usuario creado", Data: out,
	})
}

// Login godoc
// @Summary      Login con email y password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.Response
// @Failure      401   {object}  dto.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, domain.ErrInvalidInput)
	}
	out, err := h.uc.Login(in)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("login exitoso", out))
}

// LoginWithAddress godoc
// @Summary      Login con wallet address EVM
// @Tags         auth
// @Produce      json
// @Param        address  query  string  true  "dirección 0x..."
// @Success      200  {object}  dto.Response
// @Failure      401  {object}  dto.Response
// @Router       /api/auth/login-with-address [post]
func (h *AuthHandler) LoginWithAddress(c *fiber.Ctx) error {
	out, err := h.uc.LoginWithAddress(c.Query("address"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(dto.OK("login exitoso", out))
}
