package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// RegisterMovementUseCase registra movimientos ENTRADA/SAIDA de forma transaccional:
// bloqueo de fila del ítem (SELECT FOR UPDATE bajo aislamiento serializable),
// validación de stock, inserción en el ledger y ajuste de stock en el mismo Commit.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	engine   stockEngine
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner, policy domaininv.ZeroStockPolicy, recorder Recorder) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		engine:   newStockEngine(policy, recorder),
	}
}

// RegisterMovement aplica un movimiento sobre un ítem visible para ownerID (propio o global).
// El movimiento queda a nombre de ownerID aunque el ítem sea global.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, ownerID string, in dto.RegisterMovementRequest) (*dto.RegisterMovementResponse, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(in.ItemID) == "" {
		return nil, domain.NewValidation("itemId", "requerido")
	}
	if !entity.ValidMovementType(in.Type) {
		return nil, domain.NewValidation("type", "debe ser ENTRADA o SAIDA")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.NewValidation("quantity", "debe ser mayor que cero")
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
		// Bloquea la fila del ítem: dos SAIDA concurrentes no pueden validar contra el mismo stock.
		item, err = itemRepo.GetVisibleForUpdate(ctx, in.ItemID, ownerID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		mov, err = uc.engine.apply(ctx, itemRepo, movRepo, item, movementInput{
			Type:     in.Type,
			Quantity: in.Quantity,
			Note:     strings.TrimSpace(in.Note),
			ActorID:  ownerID,
		}, now)
		return err
	})
	if err != nil {
		if reason := rejectReason(err); reason != "" {
			uc.engine.recorder.MovementRejected(reason)
		}
		return nil, err
	}
	uc.engine.recorder.MovementApplied(mov.Type)

	return &dto.RegisterMovementResponse{
		Movement:    *toMovementResponse(mov),
		UpdatedItem: *toItemResponse(item),
	}, nil
}
