package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// VisibilityUseCase resuelve qué ítems ve cada identidad: los propios más los globales, sin borrados.
type VisibilityUseCase struct {
	txRunner TxRunner
}

// NewVisibilityUseCase construye el caso de uso.
func NewVisibilityUseCase(txRunner TxRunner) *VisibilityUseCase {
	return &VisibilityUseCase{txRunner: txRunner}
}

// ListVisible lista ítems visibles ordenados por createdAt desc.
// Una identidad vacía recibe una página vacía, no un error.
func (uc *VisibilityUseCase) ListVisible(ctx context.Context, ownerID string, in dto.ListItemsRequest) (*dto.ItemListResponse, error) {
	in.Normalize()
	out := &dto.ItemListResponse{Items: []dto.ItemResponse{}, Page: in.Page, Limit: in.Limit}
	if ownerID == "" {
		return out, nil
	}

	createdFrom, createdUntil, err := parseDayRange("created", in.CreatedFrom, in.CreatedTo)
	if err != nil {
		return nil, err
	}
	expiryFrom, expiryUntil, err := parseDayRange("expiry", in.ExpiryFrom, in.ExpiryTo)
	if err != nil {
		return nil, err
	}
	filter := repository.ItemFilter{
		CreatedFrom:  createdFrom,
		CreatedUntil: createdUntil,
		ExpiryFrom:   expiryFrom,
		ExpiryUntil:  expiryUntil,
		Limit:        in.Limit,
		Offset:       in.Offset(),
	}

	var items []*entity.StockItem
	err = uc.txRunner.View(ctx, func(itemRepo repository.StockItemRepository, _ repository.MovementRepository) error {
		var err error
		items, out.Total, err = itemRepo.ListVisible(ctx, ownerID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out.Items = append(out.Items, *toItemResponse(it))
	}
	return out, nil
}

// GetVisible devuelve un ítem si es visible para ownerID; en otro caso ErrItemNotFound.
func (uc *VisibilityUseCase) GetVisible(ctx context.Context, ownerID, id string) (*dto.ItemResponse, error) {
	if ownerID == "" || id == "" {
		return nil, domain.ErrItemNotFound
	}
	var item *entity.StockItem
	err := uc.txRunner.View(ctx, func(itemRepo repository.StockItemRepository, _ repository.MovementRepository) error {
		var err error
		item, err = itemRepo.GetVisible(ctx, id, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return toItemResponse(item), nil
}
