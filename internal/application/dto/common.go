package dto

import (
	"errors"
	"net/http"

	"github.com/jhoicas/holdings-api/internal/domain"
)

// Response es el sobre uniforme que el core devuelve a la capa de transporte:
// {statusCode, message, data}. StatusCode mapea 1:1 la taxonomía de errores de
// dominio; es la única señal de error que cruza la frontera.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

// OK construye un sobre exitoso.
func OK(message string, data any) Response {
	return Response{StatusCode: http.StatusOK, Message: message, Data: data}
}

// FromError mapea un error de dominio al sobre de respuesta.
// Errores no clasificados se reportan como internos sin filtrar detalle.
func FromError(err error) Response {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return Response{StatusCode: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNegativeStock),
		errors.Is(err, domain.ErrNegativeQuantity):
		return Response{StatusCode: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDuplicate),
		errors.Is(err, domain.ErrEmailAlreadyExists):
		return Response{StatusCode: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return Response{StatusCode: http.StatusUnauthorized, Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return Response{StatusCode: http.StatusForbidden, Message: err.Error()}
	default:
		return Response{StatusCode: http.StatusInternalServerError, Message: "error interno"}
	}
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}
