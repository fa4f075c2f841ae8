package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio del motor de stock.
var (
	ErrUnauthorized      = errors.New("no autorizado")
	ErrItemNotFound      = errors.New("ítem no encontrado")
	ErrMovementNotFound  = errors.New("movimiento no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto de concurrencia, reintente la operación")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// InsufficientStockError detalla una SAIDA que excede el stock disponible.
// errors.Is(err, ErrInsufficientStock) es verdadero para este tipo.
type InsufficientStockError struct {
	ItemID    string
	Requested decimal.Decimal
	Available decimal.Decimal
}

// NewInsufficientStock construye el error con los datos del ítem.
func NewInsufficientStock(itemID string, requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{ItemID: itemID, Requested: requested, Available: available}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el ítem %s: solicitado %s, disponible %s",
		e.ItemID, e.Requested.String(), e.Available.String())
}

// Is permite comparar contra ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError entrada inválida con el campo afectado.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidation construye un error de validación.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
