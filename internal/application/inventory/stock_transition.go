package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// movementInput movimiento ya validado estructuralmente.
type movementInput struct {
	Type     string
	Quantity decimal.Decimal
	Note     string
	ActorID  string
}

// stockEngine agrupa la lógica compartida por ingreso, movimientos y anulaciones.
// Todos sus métodos se ejecutan dentro de una transacción abierta con la fila del ítem bloqueada.
type stockEngine struct {
	policy   domaininv.ZeroStockPolicy
	recorder Recorder
}

func newStockEngine(policy domaininv.ZeroStockPolicy, recorder Recorder) stockEngine {
	if policy == "" {
		policy = domaininv.ZeroStockSoftDelete
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return stockEngine{policy: policy, recorder: recorder}
}

// apply valida contra el stock actual, inserta el movimiento y ajusta stock_quantity.
// item se actualiza en memoria con el estado persistido.
func (e stockEngine) apply(
	ctx context.Context,
	itemRepo repository.StockItemRepository,
	movRepo repository.MovementRepository,
	item *entity.StockItem,
	in movementInput,
	now time.Time,
) (*entity.Movement, error) {
	newStock, err := domaininv.StockCalculator(item.StockQuantity, in.Type, in.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, domain.NewInsufficientStock(item.ID, in.Quantity, item.StockQuantity)
		}
		return nil, err
	}

	mov := &entity.Movement{
		ID:        uuid.New().String(),
		Type:      in.Type,
		Quantity:  in.Quantity,
		Note:      in.Note,
		ItemID:    item.ID,
		OwnerID:   in.ActorID,
		CreatedAt: now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}

	stored, err := itemRepo.ApplyStockDelta(ctx, item.ID, domaininv.SignedDelta(in.Type, in.Quantity))
	if err != nil {
		return nil, err
	}
	if !stored.Equal(newStock) {
		return nil, fmt.Errorf("stock divergente en ítem %s: esperado %s, persistido %s", item.ID, newStock, stored)
	}
	item.StockQuantity = stored
	item.UpdatedAt = now

	detached, err := e.settleZeroStock(ctx, itemRepo, movRepo, item, now)
	if err != nil {
		return nil, err
	}
	if detached {
		mov.ItemID = ""
	}
	return mov, nil
}

// settleZeroStock aplica la política de stock cero. Devuelve true si los movimientos
// del ítem quedaron desvinculados (borrado físico).
func (e stockEngine) settleZeroStock(
	ctx context.Context,
	itemRepo repository.StockItemRepository,
	movRepo repository.MovementRepository,
	item *entity.StockItem,
	now time.Time,
) (bool, error) {
	if !item.StockQuantity.IsZero() || item.IsDeleted() {
		return false, nil
	}
	deletedAt := now
	switch e.policy {
	case domaininv.ZeroStockHardDelete:
		if _, err := movRepo.DetachItem(ctx, item.ID); err != nil {
			return false, err
		}
		if err := itemRepo.Delete(ctx, item.ID); err != nil {
			return false, err
		}
		item.DeletedAt = &deletedAt
		e.recorder.ItemDeleted(DeletedAtZeroStock)
		return true, nil
	default:
		if err := itemRepo.SetDeletedAt(ctx, item.ID, &deletedAt); err != nil {
			return false, err
		}
		item.DeletedAt = &deletedAt
		e.recorder.ItemDeleted(DeletedAtZeroStock)
		return false, nil
	}
}
