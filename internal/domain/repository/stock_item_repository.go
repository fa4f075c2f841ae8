package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ItemFilter filtros de listado de ítems visibles.
// Los rangos son semiabiertos: From inclusivo, Until exclusivo (inicio del día siguiente).
type ItemFilter struct {
	CreatedFrom  *time.Time
	CreatedUntil *time.Time
	ExpiryFrom   *time.Time
	ExpiryUntil  *time.Time
	Limit        int
	Offset       int
}

// MergeKey identifica un ítem candidato a fusión en el ingreso de stock.
// Con Global se buscan ítems sin dueño (carga del catálogo); OwnerID vacío sin Global no encuentra nada.
type MergeKey struct {
	OwnerID    string
	Global     bool
	Name       string
	Unit       string
	ExpiryDate *time.Time
}

// StockItemRepository puerto de persistencia de ítems.
// Los métodos *ForUpdate bloquean la fila hasta el fin de la transacción.
// Un ítem inexistente se devuelve como (nil, nil).
type StockItemRepository interface {
	Create(ctx context.Context, item *entity.StockItem) error

	// GetVisible aplica la regla dueño-o-global y excluye borrados.
	GetVisible(ctx context.Context, id, ownerID string) (*entity.StockItem, error)
	GetVisibleForUpdate(ctx context.Context, id, ownerID string) (*entity.StockItem, error)
	// GetOwnedForUpdate exige dueño exacto; incluye ítems con borrado lógico.
	GetOwnedForUpdate(ctx context.Context, id, ownerID string) (*entity.StockItem, error)
	// GetByIDForUpdate sin control de acceso; uso interno del motor.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	FindMergeCandidateForUpdate(ctx context.Context, key MergeKey) (*entity.StockItem, error)
	ListVisible(ctx context.Context, ownerID string, filter ItemFilter) ([]*entity.StockItem, int, error)

	// UpdateMetadata persiste name, unit, expiry y note. Nunca toca stock_quantity.
	UpdateMetadata(ctx context.Context, item *entity.StockItem) error
	// ApplyStockDelta suma delta a stock_quantity y devuelve la cantidad resultante.
	ApplyStockDelta(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
	// SetDeletedAt marca (o restaura con nil) el borrado lógico.
	SetDeletedAt(ctx context.Context, id string, at *time.Time) error
	Delete(ctx context.Context, id string) error
}
