// Package inventory contiene el motor de movimientos y conciliación de stock:
// visibilidad por dueño, ingreso con fusión, aplicación atómica de movimientos,
// eliminación que preserva el ledger y resúmenes.
package inventory

import (
	"errors"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/pkg/calendar"
)

func toItemResponse(i *entity.StockItem) *dto.ItemResponse {
	if i == nil {
		return nil
	}
	out := &dto.ItemResponse{
		ID:            i.ID,
		Name:          i.Name,
		Unit:          i.Unit,
		StockQuantity: i.StockQuantity,
		Note:          i.Note,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
		DeletedAt:     i.DeletedAt,
	}
	if i.ExpiryDate != nil {
		s := calendar.Format(*i.ExpiryDate)
		out.ExpiryDate = &s
	}
	if i.OwnerID != "" {
		owner := i.OwnerID
		out.OwnerID = &owner
	}
	return out
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	out := &dto.MovementResponse{
		ID:        m.ID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Note:      m.Note,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
	}
	if m.ItemID != "" {
		itemID := m.ItemID
		out.ItemID = &itemID
	}
	return out
}

// parseDayRange convierte cotas YYYY-MM-DD inclusivas en [from, until).
// prefix nombra los campos en el error de validación (createdFrom, expiryTo, from...).
func parseDayRange(prefix, from, to string) (*time.Time, *time.Time, error) {
	fromField, toField := "from", "to"
	if prefix != "" {
		fromField, toField = prefix+"From", prefix+"To"
	}
	f, err := calendar.ParseOptional(from)
	if err != nil {
		return nil, nil, domain.NewValidation(fromField, err.Error())
	}
	t, err := calendar.ParseOptional(to)
	if err != nil {
		return nil, nil, domain.NewValidation(toField, err.Error())
	}
	if f != nil && t != nil && t.Before(*f) {
		return nil, nil, domain.NewValidation(toField, "anterior a "+fromField)
	}
	start, until := calendar.Range(f, t)
	return start, until, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return RejectInsufficientStock
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrMovementNotFound):
		return RejectNotFound
	case errors.Is(err, domain.ErrConflict):
		return RejectConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return RejectInvalid
	}
	return ""
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
