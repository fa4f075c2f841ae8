package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeEntrada = "ENTRADA" // aumenta el stock
	MovementTypeSaida   = "SAIDA"   // disminuye el stock
)

// Movement es un registro inmutable del ledger de stock.
// ItemID queda vacío cuando el ítem se elimina; el registro se conserva como auditoría.
type Movement struct {
	ID        string
	Type      string
	Quantity  decimal.Decimal // siempre positivo; el signo lo da Type
	Note      string
	ItemID    string
	OwnerID   string // identidad que ejecutó el movimiento
	CreatedAt time.Time
}

// IsDetached indica si el movimiento perdió la referencia a su ítem.
func (m *Movement) IsDetached() bool {
	return m.ItemID == ""
}

// ValidMovementType valida el tipo de movimiento.
func ValidMovementType(t string) bool {
	return t == MovementTypeEntrada || t == MovementTypeSaida
}
