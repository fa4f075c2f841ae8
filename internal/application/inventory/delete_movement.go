package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// DeleteMovement anula un movimiento revirtiendo su efecto sobre el ítem en la misma transacción,
// de modo que stock_quantity sigue igual a la suma del ledger.
// Solo el dueño del movimiento o del ítem puede anularlo.
func (uc *RegisterMovementUseCase) DeleteMovement(ctx context.Context, ownerID, movementID string) (*dto.DeleteMovementResponse, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	now := nowUTC()
	var (
		mov  *entity.Movement
		item *entity.StockItem
	)
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		movRepo repository.MovementRepository,
	) error {
		var err error
		mov, err = movRepo.GetAccessible(ctx, movementID, ownerID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrMovementNotFound
		}
		if !mov.IsDetached() {
			item, err = itemRepo.GetByIDForUpdate(ctx, mov.ItemID)
			if err != nil {
				return err
			}
		}
		if item == nil {
			return movRepo.Delete(ctx, mov.ID)
		}

		if _, err := domaininv.ReversalCalculator(item.StockQuantity, mov.Type, mov.Quantity); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return domain.NewInsufficientStock(item.ID, mov.Quantity, item.StockQuantity)
			}
			return err
		}
		if err := movRepo.Delete(ctx, mov.ID); err != nil {
			return err
		}
		stored, err := itemRepo.ApplyStockDelta(ctx, item.ID, domaininv.SignedDelta(mov.Type, mov.Quantity).Neg())
		if err != nil {
			return err
		}
		item.StockQuantity = stored
		item.UpdatedAt = now

		// Un ítem dado de baja por stock cero vuelve a estar activo si recupera stock.
		if item.IsDeleted() && stored.IsPositive() {
			if err := itemRepo.SetDeletedAt(ctx, item.ID, nil); err != nil {
				return err
			}
			item.DeletedAt = nil
		}
		_, err = uc.engine.settleZeroStock(ctx, itemRepo, movRepo, item, now)
		return err
	})
	if err != nil {
		if reason := rejectReason(err); reason != "" {
			uc.engine.recorder.MovementRejected(reason)
		}
		return nil, err
	}

	return &dto.DeleteMovementResponse{
		Movement:    *toMovementResponse(mov),
		UpdatedItem: toItemResponse(item),
	}, nil
}
