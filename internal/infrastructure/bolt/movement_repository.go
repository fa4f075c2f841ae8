package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación bbolt del ledger de movimientos.
type MovementRepo struct {
	tx *bbolt.Tx
}

// NewMovementRepository construye el repositorio sobre la tx abierta.
func NewMovementRepository(tx *bbolt.Tx) *MovementRepo {
	return &MovementRepo{tx: tx}
}

func (r *MovementRepo) bucket() *bbolt.Bucket {
	return r.tx.Bucket(bucketMovements)
}

// itemOwner devuelve el dueño del ítem referenciado; ok=false si el ítem no existe.
func (r *MovementRepo) itemOwner(itemID string) (string, bool, error) {
	if itemID == "" {
		return "", false, nil
	}
	var rec itemRecord
	found, err := getRecord(r.tx.Bucket(bucketItems), itemID, &rec)
	if err != nil || !found {
		return "", false, err
	}
	return rec.OwnerID, true, nil
}

// accessible: el movimiento es del caller o referencia un ítem del caller.
func (r *MovementRepo) accessible(m *entity.Movement, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, nil
	}
	if m.OwnerID == ownerID {
		return true, nil
	}
	owner, ok, err := r.itemOwner(m.ItemID)
	if err != nil {
		return false, err
	}
	return ok && owner == ownerID, nil
}

func (r *MovementRepo) scan(keep func(*entity.Movement) (bool, error)) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.bucket().ForEach(func(_, v []byte) error {
		var rec movementRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("decodificar movimiento: %w", err)
		}
		m := rec.toEntity()
		ok, err := keep(m)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, m)
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	if r.bucket().Get([]byte(m.ID)) != nil {
		return fmt.Errorf("crear movimiento %s: %w", m.ID, domain.ErrDuplicate)
	}
	if err := putRecord(r.bucket(), m.ID, movementRecordFrom(m)); err != nil {
		return fmt.Errorf("crear movimiento: %w", err)
	}
	return nil
}

func (r *MovementRepo) GetAccessible(_ context.Context, id, ownerID string) (*entity.Movement, error) {
	var rec movementRecord
	found, err := getRecord(r.bucket(), id, &rec)
	if err != nil || !found {
		return nil, err
	}
	m := rec.toEntity()
	ok, err := r.accessible(m, ownerID)
	if err != nil || !ok {
		return nil, err
	}
	return m, nil
}

func (r *MovementRepo) ListAccessible(_ context.Context, ownerID string, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	movs, err := r.scan(func(m *entity.Movement) (bool, error) {
		if f.ItemID != "" && m.ItemID != f.ItemID {
			return false, nil
		}
		if f.Type != "" && m.Type != f.Type {
			return false, nil
		}
		if !inRange(m.CreatedAt, f.From, f.Until) {
			return false, nil
		}
		return r.accessible(m, ownerID)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listar movimientos: %w", err)
	}
	sort.Slice(movs, func(i, j int) bool {
		if !movs[i].CreatedAt.Equal(movs[j].CreatedAt) {
			return movs[i].CreatedAt.After(movs[j].CreatedAt)
		}
		return movs[i].ID > movs[j].ID
	})
	return page(movs, f.Limit, f.Offset), len(movs), nil
}

func (r *MovementRepo) DetachItem(_ context.Context, itemID string) (int64, error) {
	movs, err := r.scan(func(m *entity.Movement) (bool, error) {
		return m.ItemID == itemID, nil
	})
	if err != nil {
		return 0, fmt.Errorf("desvincular movimientos: %w", err)
	}
	for _, m := range movs {
		m.ItemID = ""
		if err := putRecord(r.bucket(), m.ID, movementRecordFrom(m)); err != nil {
			return 0, fmt.Errorf("desvincular movimiento %s: %w", m.ID, err)
		}
	}
	return int64(len(movs)), nil
}

func (r *MovementRepo) Delete(_ context.Context, id string) error {
	if err := r.bucket().Delete([]byte(id)); err != nil {
		return fmt.Errorf("eliminar movimiento %s: %w", id, err)
	}
	return nil
}

func (r *MovementRepo) Totals(_ context.Context, ownerID string, f repository.SummaryFilter) (repository.MovementTotals, error) {
	totals := repository.MovementTotals{Entradas: decimal.Zero, Saidas: decimal.Zero}
	if ownerID == "" {
		return totals, nil
	}
	movs, err := r.scan(func(m *entity.Movement) (bool, error) {
		if !inRange(m.CreatedAt, f.From, f.Until) {
			return false, nil
		}
		if f.ItemID != "" && m.ItemID != f.ItemID {
			return false, nil
		}
		if m.IsDetached() {
			return f.ItemID == "" && m.OwnerID == ownerID, nil
		}
		owner, ok, err := r.itemOwner(m.ItemID)
		return ok && owner == ownerID, err
	})
	if err != nil {
		return totals, fmt.Errorf("resumen de movimientos: %w", err)
	}
	return sumTotals(movs), nil
}

func (r *MovementRepo) ItemTotals(_ context.Context, itemID string) (repository.MovementTotals, error) {
	movs, err := r.scan(func(m *entity.Movement) (bool, error) {
		return m.ItemID == itemID, nil
	})
	if err != nil {
		return repository.MovementTotals{}, fmt.Errorf("totales del ítem %s: %w", itemID, err)
	}
	return sumTotals(movs), nil
}

func sumTotals(movs []*entity.Movement) repository.MovementTotals {
	t := repository.MovementTotals{Entradas: decimal.Zero, Saidas: decimal.Zero}
	for _, m := range movs {
		if m.Type == entity.MovementTypeSaida {
			t.Saidas = t.Saidas.Add(m.Quantity)
		} else {
			t.Entradas = t.Entradas.Add(m.Quantity)
		}
	}
	return t
}
