package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Run es de escritura y debe garantizar aislamiento serializable para el read-validate-write del stock;
// View es de solo lectura. Un error de fn provoca Rollback completo.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		movRepo repository.MovementRepository,
	) error) error
	View(ctx context.Context, fn func(
		itemRepo repository.StockItemRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// Recorder recibe eventos del motor para métricas.
type Recorder interface {
	MovementApplied(movType string)
	MovementRejected(reason string)
	ItemIntake(merged bool)
	ItemDeleted(reason string)
}

// Motivos de rechazo reportados al Recorder.
const (
	RejectInsufficientStock = "insufficient_stock"
	RejectNotFound          = "not_found"
	RejectConflict          = "conflict"
	RejectInvalid           = "invalid"
)

// Motivos de eliminación de ítems.
const (
	DeletedByOwner     = "owner"
	DeletedAtZeroStock = "zero_stock"
)

// NopRecorder descarta los eventos.
type NopRecorder struct{}

func (NopRecorder) MovementApplied(string)  {}
func (NopRecorder) MovementRejected(string) {}
func (NopRecorder) ItemIntake(bool)         {}
func (NopRecorder) ItemDeleted(string)      {}
