package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/calendar"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo implementación bbolt de repository.StockItemRepository, atada a una tx.
// Los métodos *ForUpdate equivalen a su lectura simple: la tx de escritura de bbolt ya es exclusiva.
type StockItemRepo struct {
	tx *bbolt.Tx
}

// NewStockItemRepository construye el repositorio sobre la tx abierta.
func NewStockItemRepository(tx *bbolt.Tx) *StockItemRepo {
	return &StockItemRepo{tx: tx}
}

func (r *StockItemRepo) bucket() *bbolt.Bucket {
	return r.tx.Bucket(bucketItems)
}

func (r *StockItemRepo) get(id string) (*entity.StockItem, error) {
	var rec itemRecord
	found, err := getRecord(r.bucket(), id, &rec)
	if err != nil || !found {
		return nil, err
	}
	return rec.toEntity(), nil
}

// scan recorre todos los ítems y devuelve los que cumplen keep.
func (r *StockItemRepo) scan(keep func(*entity.StockItem) bool) ([]*entity.StockItem, error) {
	var out []*entity.StockItem
	err := r.bucket().ForEach(func(_, v []byte) error {
		var rec itemRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("decodificar ítem: %w", err)
		}
		if it := rec.toEntity(); keep(it) {
			out = append(out, it)
		}
		return nil
	})
	return out, err
}

func (r *StockItemRepo) Create(_ context.Context, item *entity.StockItem) error {
	if r.bucket().Get([]byte(item.ID)) != nil {
		return fmt.Errorf("crear ítem %s: %w", item.ID, domain.ErrDuplicate)
	}
	item.ExpiryDate = calendar.NormalizePtr(item.ExpiryDate)
	if err := putRecord(r.bucket(), item.ID, itemRecordFrom(item)); err != nil {
		return fmt.Errorf("crear ítem: %w", err)
	}
	return nil
}

func (r *StockItemRepo) GetVisible(_ context.Context, id, ownerID string) (*entity.StockItem, error) {
	item, err := r.get(id)
	if err != nil || item == nil || !item.VisibleTo(ownerID) {
		return nil, err
	}
	return item, nil
}

func (r *StockItemRepo) GetVisibleForUpdate(ctx context.Context, id, ownerID string) (*entity.StockItem, error) {
	return r.GetVisible(ctx, id, ownerID)
}

func (r *StockItemRepo) GetOwnedForUpdate(_ context.Context, id, ownerID string) (*entity.StockItem, error) {
	item, err := r.get(id)
	if err != nil || item == nil || ownerID == "" || item.OwnerID != ownerID {
		return nil, err
	}
	return item, nil
}

func (r *StockItemRepo) GetByIDForUpdate(_ context.Context, id string) (*entity.StockItem, error) {
	return r.get(id)
}

func (r *StockItemRepo) FindMergeCandidateForUpdate(_ context.Context, key repository.MergeKey) (*entity.StockItem, error) {
	if key.Global {
		key.OwnerID = ""
	} else if key.OwnerID == "" {
		return nil, nil
	}
	items, err := r.scan(func(it *entity.StockItem) bool {
		return it.OwnerID == key.OwnerID &&
			!it.IsDeleted() &&
			it.Name == key.Name &&
			it.Unit == key.Unit &&
			calendar.Equal(it.ExpiryDate, key.ExpiryDate)
	})
	if err != nil || len(items) == 0 {
		return nil, err
	}
	// Si hubiera varios (datos previos a la regla de fusión) se toma el más antiguo.
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items[0], nil
}

func (r *StockItemRepo) ListVisible(_ context.Context, ownerID string, f repository.ItemFilter) ([]*entity.StockItem, int, error) {
	items, err := r.scan(func(it *entity.StockItem) bool {
		if !it.VisibleTo(ownerID) || !inRange(it.CreatedAt, f.CreatedFrom, f.CreatedUntil) {
			return false
		}
		if f.ExpiryFrom != nil || f.ExpiryUntil != nil {
			return it.ExpiryDate != nil && inRange(*it.ExpiryDate, f.ExpiryFrom, f.ExpiryUntil)
		}
		return true
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listar ítems: %w", err)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	return page(items, f.Limit, f.Offset), len(items), nil
}

// update lee, modifica y reescribe un ítem existente.
func (r *StockItemRepo) update(id string, mutate func(*itemRecord) error) (*itemRecord, error) {
	var rec itemRecord
	found, err := getRecord(r.bucket(), id, &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrItemNotFound
	}
	if err := mutate(&rec); err != nil {
		return nil, err
	}
	if err := putRecord(r.bucket(), id, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *StockItemRepo) UpdateMetadata(_ context.Context, item *entity.StockItem) error {
	_, err := r.update(item.ID, func(rec *itemRecord) error {
		rec.Name = item.Name
		rec.Unit = item.Unit
		rec.ExpiryDate = calendar.NormalizePtr(item.ExpiryDate)
		rec.Note = item.Note
		rec.UpdatedAt = item.UpdatedAt.UTC()
		return nil
	})
	if err != nil {
		return fmt.Errorf("actualizar ítem %s: %w", item.ID, err)
	}
	return nil
}

func (r *StockItemRepo) ApplyStockDelta(_ context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	rec, err := r.update(id, func(rec *itemRecord) error {
		next := rec.StockQuantity.Add(delta)
		if next.IsNegative() {
			return domain.NewInsufficientStock(id, delta.Neg(), rec.StockQuantity)
		}
		rec.StockQuantity = next
		rec.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("ajustar stock %s: %w", id, err)
	}
	return rec.StockQuantity, nil
}

func (r *StockItemRepo) SetDeletedAt(_ context.Context, id string, at *time.Time) error {
	_, err := r.update(id, func(rec *itemRecord) error {
		rec.DeletedAt = at
		return nil
	})
	if err != nil {
		return fmt.Errorf("marcar borrado %s: %w", id, err)
	}
	return nil
}

func (r *StockItemRepo) Delete(_ context.Context, id string) error {
	if err := r.bucket().Delete([]byte(id)); err != nil {
		return fmt.Errorf("eliminar ítem %s: %w", id, err)
	}
	return nil
}
