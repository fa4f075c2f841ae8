package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/calendar"
)

// IntakeUseCase da de alta ítems propios. Si el dueño ya tiene un ítem activo con el mismo
// nombre, unidad y vencimiento, el ingreso se fusiona sobre él en lugar de crear un duplicado.
type IntakeUseCase struct {
	txRunner TxRunner
	engine   stockEngine
}

// NewIntakeUseCase construye el caso de uso.
func NewIntakeUseCase(txRunner TxRunner, policy domaininv.ZeroStockPolicy, recorder Recorder) *IntakeUseCase {
	return &IntakeUseCase{
		txRunner: txRunner,
		engine:   newStockEngine(policy, recorder),
	}
}

// opening movimiento inicial resuelto; nil si no hay cantidad que registrar.
type opening struct {
	Type     string
	Quantity decimal.Decimal
	Note     string
}

// Intake crea o fusiona un ítem y registra su movimiento inicial en la misma transacción.
func (uc *IntakeUseCase) Intake(ctx context.Context, ownerID string, in dto.IntakeItemRequest) (*dto.ItemResponse, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	name := strings.TrimSpace(in.Name)
	unit := strings.TrimSpace(in.Unit)
	if name == "" {
		return nil, domain.NewValidation("name", "requerido")
	}
	if unit == "" {
		return nil, domain.NewValidation("unit", "requerido")
	}
	expiry, err := calendar.ParseOptional(in.ExpiryDate)
	if err != nil {
		return nil, domain.NewValidation("expiryDate", err.Error())
	}
	open, err := resolveOpening(in)
	if err != nil {
		return nil, err
	}
	note := strings.TrimSpace(in.Note)

	now := nowUTC()
	var (
		item   *entity.StockItem
		mov    *entity.Movement
		merged bool
	)
	err = uc.txRunner.Run(ctx, func(
		itemRepo repository.StockItemRepository,
		movRepo repository.MovementRepository,
	) error {
		candidate, err := itemRepo.FindMergeCandidateForUpdate(ctx, repository.MergeKey{
			OwnerID:    ownerID,
			Name:       name,
			Unit:       unit,
			ExpiryDate: expiry,
		})
		if err != nil {
			return err
		}

		if candidate != nil {
			merged = true
			item = candidate
			if note != "" && note != item.Note {
				item.Note = note
				item.UpdatedAt = now
				if err := itemRepo.UpdateMetadata(ctx, item); err != nil {
					return err
				}
			}
		} else {
			item = &entity.StockItem{
				ID:            uuid.New().String(),
				Name:          name,
				Unit:          unit,
				StockQuantity: decimal.Zero,
				ExpiryDate:    expiry,
				Note:          note,
				OwnerID:       ownerID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := itemRepo.Create(ctx, item); err != nil {
				return err
			}
		}

		if open == nil {
			return nil
		}
		// El stock inicial entra por el ledger: stock_quantity sigue siendo la suma de movimientos.
		mov, err = uc.engine.apply(ctx, itemRepo, movRepo, item, movementInput{
			Type:     open.Type,
			Quantity: open.Quantity,
			Note:     open.Note,
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

	uc.engine.recorder.ItemIntake(merged)
	if mov != nil {
		uc.engine.recorder.MovementApplied(mov.Type)
	}
	return toItemResponse(item), nil
}

// resolveOpening combina openingMovement y stockQuantity. Cantidad cero no genera movimiento.
func resolveOpening(in dto.IntakeItemRequest) (*opening, error) {
	var op opening
	switch {
	case in.OpeningMovement != nil:
		op.Type = strings.ToUpper(strings.TrimSpace(in.OpeningMovement.Type))
		if op.Type == "" {
			op.Type = entity.MovementTypeEntrada
		}
		if !entity.ValidMovementType(op.Type) {
			return nil, domain.NewValidation("openingMovement.type", "debe ser ENTRADA o SAIDA")
		}
		op.Quantity = in.OpeningMovement.Quantity
		op.Note = strings.TrimSpace(in.OpeningMovement.Note)
		if in.StockQuantity != nil && !in.StockQuantity.Equal(op.Quantity) {
			return nil, domain.NewValidation("stockQuantity", "no coincide con openingMovement.quantity")
		}
		if op.Quantity.IsNegative() {
			return nil, domain.NewValidation("openingMovement.quantity", "no puede ser negativa")
		}
	case in.StockQuantity != nil:
		op.Type = entity.MovementTypeEntrada
		op.Quantity = *in.StockQuantity
		if op.Quantity.IsNegative() {
			return nil, domain.NewValidation("stockQuantity", "no puede ser negativa")
		}
	default:
		return nil, nil
	}
	if op.Quantity.IsZero() {
		return nil, nil
	}
	return &op, nil
}
