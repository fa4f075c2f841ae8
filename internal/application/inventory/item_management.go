package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/calendar"
)

// ItemUseCase edición de metadatos y eliminación de ítems propios.
// Los ítems globales no se modifican por esta vía.
type ItemUseCase struct {
	txRunner TxRunner
	recorder Recorder
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(txRunner TxRunner, recorder Recorder) *ItemUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &ItemUseCase{txRunner: txRunner, recorder: recorder}
}

// UpdateItem cambia name, unit, expiryDate o note. El stock solo cambia con movimientos.
func (uc *ItemUseCase) UpdateItem(ctx context.Context, ownerID, itemID string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if in.StockQuantity != nil {
		return nil, domain.NewValidation("stockQuantity", "el stock solo se modifica con movimientos")
	}

	var item *entity.StockItem
	err := uc.txRunner.Run(ctx, func(itemRepo repository.StockItemRepository, _ repository.MovementRepository) error {
		var err error
		item, err = itemRepo.GetOwnedForUpdate(ctx, itemID, ownerID)
		if err != nil {
			return err
		}
		if item == nil || item.IsDeleted() {
			return domain.ErrItemNotFound
		}
		if err := applyItemChanges(item, in); err != nil {
			return err
		}
		item.UpdatedAt = nowUTC()
		return itemRepo.UpdateMetadata(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

func applyItemChanges(item *entity.StockItem, in dto.UpdateItemRequest) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.NewValidation("name", "no puede quedar vacío")
		}
		item.Name = name
	}
	if in.Unit != nil {
		unit := strings.TrimSpace(*in.Unit)
		if unit == "" {
			return domain.NewValidation("unit", "no puede quedar vacía")
		}
		item.Unit = unit
	}
	if in.ExpiryDate != nil {
		expiry, err := calendar.ParseOptional(*in.ExpiryDate)
		if err != nil {
			return domain.NewValidation("expiryDate", err.Error())
		}
		item.ExpiryDate = expiry
	}
	if in.Note != nil {
		item.Note = strings.TrimSpace(*in.Note)
	}
	return nil
}

// DeleteItem elimina un ítem del dueño exacto. Sus movimientos se conservan desvinculados
// (item_id = NULL) en la misma transacción. Devuelve el último estado del ítem.
func (uc *ItemUseCase) DeleteItem(ctx context.Context, ownerID, itemID string) (*dto.ItemResponse, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	var item *entity.StockItem
	err := uc.txRunner.Run(ctx, func(itemRepo repository.StockItemRepository, movRepo repository.MovementRepository) error {
		var err error
		item, err = itemRepo.GetOwnedForUpdate(ctx, itemID, ownerID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		if _, err := movRepo.DetachItem(ctx, item.ID); err != nil {
			return err
		}
		return itemRepo.Delete(ctx, item.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.ItemDeleted(DeletedByOwner)
	if item.DeletedAt == nil {
		now := nowUTC()
		item.DeletedAt = &now
	}
	return toItemResponse(item), nil
}
