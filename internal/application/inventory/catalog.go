package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/calendar"
)

// CatalogUseCase vía administrativa para dar de alta ítems globales (sin dueño).
// La API pública nunca crea ítems globales.
type CatalogUseCase struct {
	txRunner TxRunner
	engine   stockEngine
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(txRunner TxRunner, recorder Recorder) *CatalogUseCase {
	return &CatalogUseCase{
		txRunner: txRunner,
		engine:   newStockEngine(domaininv.ZeroStockSoftDelete, recorder),
	}
}

// SeedGlobal crea cada entrada que no exista aún como ítem global activo (mismo nombre, unidad
// y vencimiento). El stock inicial se registra como ENTRADA a nombre de actorID.
// Todas las entradas van en una sola transacción.
func (uc *CatalogUseCase) SeedGlobal(ctx context.Context, actorID string, entries []dto.CatalogEntry) (*dto.CatalogSeedResult, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, domain.NewValidation("actor", "requerido")
	}
	type prepared struct {
		name, unit, note string
		expiry           *time.Time
		qty              decimal.Decimal
	}
	items := make([]prepared, 0, len(entries))
	for i, e := range entries {
		p := prepared{
			name: strings.TrimSpace(e.Name),
			unit: strings.TrimSpace(e.Unit),
			note: strings.TrimSpace(e.Note),
			qty:  e.Quantity,
		}
		if p.name == "" || p.unit == "" {
			return nil, domain.NewValidation(fmt.Sprintf("items[%d]", i), "name y unit son requeridos")
		}
		if p.qty.IsNegative() {
			return nil, domain.NewValidation(fmt.Sprintf("items[%d].quantity", i), "no puede ser negativa")
		}
		expiry, err := calendar.ParseOptional(e.ExpiryDate)
		if err != nil {
			return nil, domain.NewValidation(fmt.Sprintf("items[%d].expiryDate", i), err.Error())
		}
		p.expiry = expiry
		items = append(items, p)
	}

	now := nowUTC()
	res := &dto.CatalogSeedResult{}
	err := uc.txRunner.Run(ctx, func(itemRepo repository.StockItemRepository, movRepo repository.MovementRepository) error {
		res.Created, res.Skipped = 0, 0
		for _, p := range items {
			existing, err := itemRepo.FindMergeCandidateForUpdate(ctx, repository.MergeKey{
				Global:     true,
				Name:       p.name,
				Unit:       p.unit,
				ExpiryDate: p.expiry,
			})
			if err != nil {
				return err
			}
			if existing != nil {
				res.Skipped++
				continue
			}
			item := &entity.StockItem{
				ID:            uuid.New().String(),
				Name:          p.name,
				Unit:          p.unit,
				StockQuantity: decimal.Zero,
				ExpiryDate:    p.expiry,
				Note:          p.note,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := itemRepo.Create(ctx, item); err != nil {
				return err
			}
			if p.qty.IsPositive() {
				if _, err := uc.engine.apply(ctx, itemRepo, movRepo, item, movementInput{
					Type:     entity.MovementTypeEntrada,
					Quantity: p.qty,
					Note:     "carga de catálogo",
					ActorID:  actorID,
				}, now); err != nil {
					return err
				}
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
