package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// SummaryUseCase agregados de solo lectura sobre el ledger.
type SummaryUseCase struct {
	txRunner TxRunner
}

// NewSummaryUseCase construye el caso de uso.
func NewSummaryUseCase(txRunner TxRunner) *SummaryUseCase {
	return &SummaryUseCase{txRunner: txRunner}
}

// Summarize suma ENTRADA y SAIDA de los movimientos de ítems del dueño en el rango de días.
// Los movimientos de ítems eliminados siguen contando para quien los registró.
func (uc *SummaryUseCase) Summarize(ctx context.Context, ownerID string, in dto.SummaryRequest) (*dto.SummaryResponse, error) {
	out := &dto.SummaryResponse{Entradas: decimal.Zero, Saidas: decimal.Zero, Net: decimal.Zero}
	if ownerID == "" {
		return out, nil
	}
	from, until, err := parseDayRange("", in.From, in.To)
	if err != nil {
		return nil, err
	}

	var totals repository.MovementTotals
	err = uc.txRunner.View(ctx, func(_ repository.StockItemRepository, movRepo repository.MovementRepository) error {
		var err error
		totals, err = movRepo.Totals(ctx, ownerID, repository.SummaryFilter{
			ItemID: strings.TrimSpace(in.ItemID),
			From:   from,
			Until:  until,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	out.Entradas = totals.Entradas
	out.Saidas = totals.Saidas
	out.Net = domaininv.LedgerBalance(totals.Entradas, totals.Saidas)
	return out, nil
}

// Reconcile recalcula el saldo del ledger de un ítem visible y lo compara con stock_quantity.
func (uc *SummaryUseCase) Reconcile(ctx context.Context, ownerID, itemID string) (*dto.ReconciliationResponse, error) {
	if ownerID == "" {
		return nil, domain.ErrItemNotFound
	}

	var (
		item   *entity.StockItem
		totals repository.MovementTotals
	)
	err := uc.txRunner.View(ctx, func(itemRepo repository.StockItemRepository, movRepo repository.MovementRepository) error {
		var err error
		item, err = itemRepo.GetVisible(ctx, itemID, ownerID)
		if err != nil || item == nil {
			return err
		}
		totals, err = movRepo.ItemTotals(ctx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}

	balance := domaininv.LedgerBalance(totals.Entradas, totals.Saidas)
	return &dto.ReconciliationResponse{
		ItemID:        item.ID,
		StockQuantity: item.StockQuantity,
		LedgerBalance: balance,
		Entradas:      totals.Entradas,
		Saidas:        totals.Saidas,
		Consistent:    balance.Equal(item.StockQuantity),
	}, nil
}
