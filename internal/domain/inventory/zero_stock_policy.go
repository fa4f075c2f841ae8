package inventory

import "fmt"

// ZeroStockPolicy define qué ocurre con un ítem cuyo stock llega a cero.
type ZeroStockPolicy string

const (
	// ZeroStockSoftDelete marca deleted_at; el ítem deja de listarse y el ledger queda intacto.
	ZeroStockSoftDelete ZeroStockPolicy = "soft_delete"
	// ZeroStockHardDelete desvincula los movimientos y elimina la fila (se pierden los metadatos del ítem).
	ZeroStockHardDelete ZeroStockPolicy = "hard_delete"
)

// ParseZeroStockPolicy valida el valor de configuración; vacío equivale a soft_delete.
func ParseZeroStockPolicy(s string) (ZeroStockPolicy, error) {
	switch ZeroStockPolicy(s) {
	case "", ZeroStockSoftDelete:
		return ZeroStockSoftDelete, nil
	case ZeroStockHardDelete:
		return ZeroStockHardDelete, nil
	}
	return "", fmt.Errorf("política de stock cero desconocida: %q", s)
}
