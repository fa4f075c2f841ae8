package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningMovementRequest movimiento inicial opcional del ingreso de un ítem.
type OpeningMovementRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Type     string          `json:"type,omitempty"` // ENTRADA por defecto
	Note     string          `json:"note,omitempty"`
}

// IntakeItemRequest body para POST /api/items.
// StockQuantity sin OpeningMovement se registra como ENTRADA inicial.
type IntakeItemRequest struct {
	Name            string                  `json:"name"`
	Unit            string                  `json:"unit"`
	ExpiryDate      string                  `json:"expiryDate,omitempty"` // YYYY-MM-DD
	Note            string                  `json:"note,omitempty"`
	StockQuantity   *decimal.Decimal        `json:"stockQuantity,omitempty"`
	OpeningMovement *OpeningMovementRequest `json:"openingMovement,omitempty"`
}

// UpdateItemRequest body para PATCH /api/items/:id. Campos nil no cambian.
// ExpiryDate vacío elimina la fecha. StockQuantity siempre se rechaza: el stock solo cambia vía movimientos.
type UpdateItemRequest struct {
	Name          *string          `json:"name,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	ExpiryDate    *string          `json:"expiryDate,omitempty"`
	Note          *string          `json:"note,omitempty"`
	StockQuantity *decimal.Decimal `json:"stockQuantity,omitempty"`
}

// ListItemsRequest query de GET /api/items. Fechas YYYY-MM-DD, rangos inclusivos por día.
type ListItemsRequest struct {
	PageRequest
	CreatedFrom string `query:"createdFrom"`
	CreatedTo   string `query:"createdTo"`
	ExpiryFrom  string `query:"expiryFrom"`
	ExpiryTo    string `query:"expiryTo"`
}

// ItemResponse representación pública de un ítem.
type ItemResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	StockQuantity decimal.Decimal `json:"stockQuantity"`
	ExpiryDate    *string         `json:"expiryDate"`
	Note          string          `json:"note,omitempty"`
	OwnerID       *string         `json:"ownerId"` // null = ítem global
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     *time.Time      `json:"deletedAt"`
}

// ItemListResponse página de ítems visibles.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ReconciliationResponse compara el stock materializado con el saldo del ledger.
type ReconciliationResponse struct {
	ItemID        string          `json:"itemId"`
	StockQuantity decimal.Decimal `json:"stockQuantity"`
	LedgerBalance decimal.Decimal `json:"ledgerBalance"`
	Entradas      decimal.Decimal `json:"entradas"`
	Saidas        decimal.Decimal `json:"saidas"`
	Consistent    bool            `json:"consistent"`
}
