package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementFilter filtros de listado del ledger. From inclusivo, Until exclusivo.
type MovementFilter struct {
	ItemID string
	Type   string
	From   *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// SummaryFilter alcance del resumen de movimientos.
type SummaryFilter struct {
	ItemID string
	From   *time.Time
	Until  *time.Time
}

// MovementTotals sumas por tipo de movimiento.
type MovementTotals struct {
	Entradas decimal.Decimal
	Saidas   decimal.Decimal
}

// MovementRepository puerto de persistencia del ledger de movimientos.
// Un movimiento es accesible por su dueño o por el dueño del ítem referenciado.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetAccessible(ctx context.Context, id, ownerID string) (*entity.Movement, error)
	ListAccessible(ctx context.Context, ownerID string, filter MovementFilter) ([]*entity.Movement, int, error)
	// DetachItem deja item_id en NULL para todos los movimientos del ítem.
	DetachItem(ctx context.Context, itemID string) (int64, error)
	Delete(ctx context.Context, id string) error
	// Totals suma movimientos de ítems del dueño; sin ItemID incluye además
	// los movimientos desvinculados que el dueño registró.
	Totals(ctx context.Context, ownerID string, filter SummaryFilter) (MovementTotals, error)
	// ItemTotals suma todos los movimientos que referencian el ítem.
	ItemTotals(ctx context.Context, itemID string) (MovementTotals, error)
}
