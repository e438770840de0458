package holdings

import (
	"context"

	"github.com/jhoicas/holdings-api/internal/domain"
	"github.com/jhoicas/holdings-api/internal/domain/entity"
)

// resolvedPair es la entrada de caché de resolución: existencia solamente.
// Nunca transporta precio ni stock; esos se releen del store en el momento de
// uso para que una entrada vieja jamás alimente un chequeo de suficiencia.
type resolvedPair struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

// resolveUser resuelve la identidad a un userID canónico verificando que
// usuario y producto existan, con cache-aside sobre la clave de resolución.
// Falla con ErrNotFound si cualquiera de los dos no existe.
func (uc *UseCase) resolveUser(ctx context.Context, ident domain.Identity, productID string) (string, error) {
	if !ident.Valid() || productID == "" {
		return "", domain.ErrInvalidInput
	}

	key := resolutionKey(ident, productID)
	var pair resolvedPair
	hit, err := uc.cache.Get(ctx, key, &pair)
	if err != nil {
		return "", err
	}
	if hit && pair.UserID != "" {
		return pair.UserID, nil
	}

	user, err := uc.lookupUser(ident)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrNotFound
	}
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", domain.ErrNotFound
	}

	pair = resolvedPair{UserID: user.ID, ProductID: product.ID}
	if err := uc.cache.Set(ctx, key, pair); err != nil {
		return "", err
	}
	return user.ID, nil
}

// lookupUser busca el User por la clave que traiga la identidad (id o email).
func (uc *UseCase) lookupUser(ident domain.Identity) (*entity.User, error) {
	switch ident.Kind {
	case domain.IdentityByID:
		return uc.users.GetByID(ident.Value)
	case domain.IdentityByEmail:
		return uc.users.GetByEmail(ident.Value)
	}
	return nil, domain.ErrInvalidInput
}
