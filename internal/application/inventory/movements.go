package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// MovementQueryUseCase consulta el ledger. Un movimiento es accesible para quien lo registró
// y para el dueño del ítem que referencia.
type MovementQueryUseCase struct {
	txRunner TxRunner
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(txRunner TxRunner) *MovementQueryUseCase {
	return &MovementQueryUseCase{txRunner: txRunner}
}

// ListMovements página de movimientos accesibles ordenados por createdAt desc.
func (uc *MovementQueryUseCase) ListMovements(ctx context.Context, ownerID string, in dto.ListMovementsRequest) (*dto.MovementListResponse, error) {
	in.Normalize()
	out := &dto.MovementListResponse{Items: []dto.MovementResponse{}, Page: in.Page, Limit: in.Limit}
	if ownerID == "" {
		return out, nil
	}

	movType := strings.ToUpper(strings.TrimSpace(in.Type))
	if movType != "" && !entity.ValidMovementType(movType) {
		return nil, domain.NewValidation("type", "debe ser ENTRADA o SAIDA")
	}
	from, until, err := parseDayRange("", in.From, in.To)
	if err != nil {
		return nil, err
	}
	filter := repository.MovementFilter{
		ItemID: strings.TrimSpace(in.ItemID),
		Type:   movType,
		From:   from,
		Until:  until,
		Limit:  in.Limit,
		Offset: in.Offset(),
	}

	var movs []*entity.Movement
	err = uc.txRunner.View(ctx, func(_ repository.StockItemRepository, movRepo repository.MovementRepository) error {
		var err error
		movs, out.Total, err = movRepo.ListAccessible(ctx, ownerID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, m := range movs {
		out.Items = append(out.Items, *toMovementResponse(m))
	}
	return out, nil
}

// GetMovement devuelve un movimiento accesible o ErrMovementNotFound.
func (uc *MovementQueryUseCase) GetMovement(ctx context.Context, ownerID, id string) (*dto.MovementResponse, error) {
	if ownerID == "" || id == "" {
		return nil, domain.ErrMovementNotFound
	}
	var mov *entity.Movement
	err := uc.txRunner.View(ctx, func(_ repository.StockItemRepository, movRepo repository.MovementRepository) error {
		var err error
		mov, err = movRepo.GetAccessible(ctx, id, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrMovementNotFound
	}
	return toMovementResponse(mov), nil
}
