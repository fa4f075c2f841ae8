package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movements.
type RegisterMovementRequest struct {
	ItemID   string          `json:"itemId"`
	Type     string          `json:"type"` // ENTRADA | SAIDA
	Quantity decimal.Decimal `json:"quantity"`
	Note     string          `json:"note,omitempty"`
}

// MovementResponse representación pública de un movimiento del ledger.
type MovementResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note,omitempty"`
	ItemID    *string         `json:"itemId"` // null si el ítem fue eliminado
	OwnerID   string          `json:"ownerId"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RegisterMovementResponse movimiento creado y estado del ítem tras aplicarlo,
// para que el cliente refresque vistas derivadas sin otra lectura.
type RegisterMovementResponse struct {
	Movement    MovementResponse `json:"movement"`
	UpdatedItem ItemResponse     `json:"updatedItem"`
}

// DeleteMovementResponse movimiento anulado y el ítem ajustado (nil si estaba desvinculado).
type DeleteMovementResponse struct {
	Movement    MovementResponse `json:"movement"`
	UpdatedItem *ItemResponse    `json:"updatedItem"`
}

// ListMovementsRequest query de GET /api/movements.
type ListMovementsRequest struct {
	PageRequest
	ItemID string `query:"itemId"`
	Type   string `query:"type"`
	From   string `query:"from"`
	To     string `query:"to"`
}

// MovementListResponse página del ledger.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// SummaryRequest query de GET /api/movements/summary.
type SummaryRequest struct {
	ItemID string `query:"itemId"`
	From   string `query:"from"`
	To     string `query:"to"`
}

// SummaryResponse totales por tipo y saldo neto.
type SummaryResponse struct {
	Entradas decimal.Decimal `json:"entradas"`
	Saidas   decimal.Decimal `json:"saidas"`
	Net      decimal.Decimal `json:"net"`
}
