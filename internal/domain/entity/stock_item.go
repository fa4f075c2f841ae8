package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItem representa un ítem de inventario (ingrediente) con su stock materializado.
// StockQuantity es el espejo del ledger: suma de ENTRADA menos suma de SAIDA.
// OwnerID vacío significa ítem global, visible para todo usuario autenticado.
type StockItem struct {
	ID            string
	Name          string
	Unit          string
	StockQuantity decimal.Decimal
	ExpiryDate    *time.Time // fecha calendario en UTC 00:00, sin hora
	Note          string
	OwnerID       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time // marca de borrado lógico
}

// IsGlobal indica si el ítem no tiene dueño.
func (i *StockItem) IsGlobal() bool {
	return i.OwnerID == ""
}

// IsDeleted indica si el ítem tiene marca de borrado lógico.
func (i *StockItem) IsDeleted() bool {
	return i.DeletedAt != nil
}

// VisibleTo aplica la regla de visibilidad: dueño o global, y no borrado.
func (i *StockItem) VisibleTo(ownerID string) bool {
	if ownerID == "" || i.IsDeleted() {
		return false
	}
	return i.OwnerID == ownerID || i.IsGlobal()
}
