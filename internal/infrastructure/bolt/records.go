package bolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

type itemRecord struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	Note          string          `json:"note,omitempty"`
	OwnerID       string          `json:"owner_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
}

func (r itemRecord) toEntity() *entity.StockItem {
	return &entity.StockItem{
		ID:            r.ID,
		Name:          r.Name,
		Unit:          r.Unit,
		StockQuantity: r.StockQuantity,
		ExpiryDate:    r.ExpiryDate,
		Note:          r.Note,
		OwnerID:       r.OwnerID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		DeletedAt:     r.DeletedAt,
	}
}

func itemRecordFrom(i *entity.StockItem) itemRecord {
	return itemRecord{
		ID:            i.ID,
		Name:          i.Name,
		Unit:          i.Unit,
		StockQuantity: i.StockQuantity,
		ExpiryDate:    i.ExpiryDate,
		Note:          i.Note,
		OwnerID:       i.OwnerID,
		CreatedAt:     i.CreatedAt.UTC(),
		UpdatedAt:     i.UpdatedAt.UTC(),
		DeletedAt:     i.DeletedAt,
	}
}

type movementRecord struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Note      string          `json:"note,omitempty"`
	ItemID    string          `json:"item_id,omitempty"`
	OwnerID   string          `json:"owner_id"`
	CreatedAt time.Time       `json:"created_at"`
}

func (r movementRecord) toEntity() *entity.Movement {
	return &entity.Movement{
		ID:        r.ID,
		Type:      r.Type,
		Quantity:  r.Quantity,
		Note:      r.Note,
		ItemID:    r.ItemID,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt,
	}
}

func movementRecordFrom(m *entity.Movement) movementRecord {
	return movementRecord{
		ID:        m.ID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Note:      m.Note,
		ItemID:    m.ItemID,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// getRecord lee y decodifica una clave; found=false si no existe.
func getRecord(b *bbolt.Bucket, id string, out any) (bool, error) {
	data := b.Get([]byte(id))
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decodificar %s: %w", id, err)
	}
	return true, nil
}

func putRecord(b *bbolt.Bucket, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("codificar %s: %w", id, err)
	}
	return b.Put([]byte(id), data)
}

// inRange aplica [from, until) sobre t.
func inRange(t time.Time, from, until *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if until != nil && !t.Before(*until) {
		return false
	}
	return true
}

func page[T any](all []T, limit, offset int) []T {
	if offset < 0 || offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return all[offset:end]
}
