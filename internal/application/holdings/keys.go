package holdings

import "github.com/jhoicas/holdings-api/internal/domain"

// Esquema de claves de caché.
//
// La clave de resolución usa la identidad tal como la escribió el caller
// (id o email): solo afirma existencia, y la existencia no cambia con las
// escrituras del motor. La clave de holding en cambio se canoniza al userID
// resuelto, para que una escritura direccionada por email invalide la entrada
// que pobló una lectura direccionada por id del mismo usuario.

func resolutionKey(ident domain.Identity, productID string) string {
	return "user_" + ident.Value + "_product_" + productID
}

func holdingKey(userID, productID string) string {
	return "user_" + userID + "_product_" + productID + "_stock"
}

func productStockKey(productID string) string {
	return "product_stock_" + productID
}
