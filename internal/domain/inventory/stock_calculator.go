package inventory

import (
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SignedDelta devuelve el efecto de un movimiento sobre el stock: +cantidad para ENTRADA, -cantidad para SAIDA.
func SignedDelta(movType string, quantity decimal.Decimal) decimal.Decimal {
	if movType == entity.MovementTypeSaida {
		return quantity.Neg()
	}
	return quantity
}

// StockCalculator aplica un movimiento sobre el stock actual (servicio de dominio).
// NuevoStock = StockActual + Cantidad (ENTRADA) | StockActual - Cantidad (SAIDA).
// Una SAIDA mayor al stock actual devuelve domain.ErrInsufficientStock sin calcular nada.
func StockCalculator(stockActual decimal.Decimal, movType string, quantity decimal.Decimal) (decimal.Decimal, error) {
	if !entity.ValidMovementType(movType) || !quantity.IsPositive() {
		return stockActual, domain.ErrInvalidInput
	}
	if movType == entity.MovementTypeSaida && quantity.GreaterThan(stockActual) {
		return stockActual, domain.ErrInsufficientStock
	}
	return stockActual.Add(SignedDelta(movType, quantity)), nil
}

// ReversalCalculator calcula el stock tras anular un movimiento ya aplicado.
// Anular una ENTRADA ya consumida dejaría stock negativo: domain.ErrInsufficientStock.
func ReversalCalculator(stockActual decimal.Decimal, movType string, quantity decimal.Decimal) (decimal.Decimal, error) {
	next := stockActual.Sub(SignedDelta(movType, quantity))
	if next.IsNegative() {
		return stockActual, domain.ErrInsufficientStock
	}
	return next, nil
}

// LedgerBalance recalcula el saldo desde los totales del ledger.
func LedgerBalance(entradas, saidas decimal.Decimal) decimal.Decimal {
	return entradas.Sub(saidas)
}
