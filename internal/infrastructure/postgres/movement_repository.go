package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

var movementColumns = []string{
	"m.id", "m.type", "m.quantity", "m.note", "m.item_id", "m.owner_id", "m.created_at",
}

type movementRow struct {
	ID        string          `db:"id"`
	Type      string          `db:"type"`
	Quantity  decimal.Decimal `db:"quantity"`
	Note      string          `db:"note"`
	ItemID    *string         `db:"item_id"`
	OwnerID   string          `db:"owner_id"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r movementRow) toEntity() *entity.Movement {
	m := &entity.Movement{
		ID:        r.ID,
		Type:      r.Type,
		Quantity:  r.Quantity,
		Note:      r.Note,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.ItemID != nil {
		m.ItemID = *r.ItemID
	}
	return m
}

type totalsRow struct {
	Entradas decimal.Decimal `db:"entradas"`
	Saidas   decimal.Decimal `db:"saidas"`
}

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// accessibleTo movimientos registrados por el dueño o que referencian un ítem suyo.
// Requiere el LEFT JOIN stock_items i.
func accessibleTo(ownerID string) squirrel.Sqlizer {
	return squirrel.Or{squirrel.Eq{"m.owner_id": ownerID}, squirrel.Eq{"i.owner_id": ownerID}}
}

func (r *MovementRepo) selectJoined(columns ...string) squirrel.SelectBuilder {
	return r.builder().Select(columns...).
		From("stock_movements m").
		LeftJoin("stock_items i ON i.id = m.item_id")
}

// Create inserta un movimiento. Los movimientos nunca se actualizan.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	var itemID *string
	if m.ItemID != "" {
		itemID = &m.ItemID
	}
	query, args, err := r.builder().Insert("stock_movements").
		Columns("id", "type", "quantity", "note", "item_id", "owner_id", "created_at").
		Values(m.ID, m.Type, m.Quantity, m.Note, itemID, m.OwnerID, m.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create movement: build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create movement: %w", mapError(err))
	}
	return nil
}

// GetAccessible obtiene un movimiento si el dueño lo registró o es dueño de su ítem.
func (r *MovementRepo) GetAccessible(ctx context.Context, id, ownerID string) (*entity.Movement, error) {
	if !validID(id) || ownerID == "" {
		return nil, nil
	}
	query, args, err := r.selectJoined(movementColumns...).
		Where(squirrel.Eq{"m.id": id}).
		Where(accessibleTo(ownerID)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("get movement: build query: %w", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", mapError(err))
	}
	return row.toEntity(), nil
}

// ListAccessible página del ledger accesible, ordenada por created_at desc.
func (r *MovementRepo) ListAccessible(ctx context.Context, ownerID string, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	if ownerID == "" {
		return []*entity.Movement{}, 0, nil
	}
	where := squirrel.And{accessibleTo(ownerID)}
	if f.ItemID != "" {
		if !validID(f.ItemID) {
			return []*entity.Movement{}, 0, nil
		}
		where = append(where, squirrel.Eq{"m.item_id": f.ItemID})
	}
	if f.Type != "" {
		where = append(where, squirrel.Eq{"m.type": f.Type})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"m.created_at": *f.From})
	}
	if f.Until != nil {
		where = append(where, squirrel.Lt{"m.created_at": *f.Until})
	}

	countQuery, countArgs, err := r.selectJoined("COUNT(*)").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("count movements: build query: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", mapError(err))
	}

	limit, offset := pageBounds(f.Limit, f.Offset)
	query, args, err := r.selectJoined(movementColumns...).
		Where(where).
		OrderBy("m.created_at DESC", "m.id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: build query: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", mapError(err))
	}
	out := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, total, nil
}

// DetachItem deja item_id en NULL; el ledger conserva la historia del ítem eliminado.
func (r *MovementRepo) DetachItem(ctx context.Context, itemID string) (int64, error) {
	tag, err := r.q.Exec(ctx, `UPDATE stock_movements SET item_id = NULL WHERE item_id = $1`, itemID)
	if err != nil {
		return 0, fmt.Errorf("detach movements: %w", mapError(err))
	}
	return tag.RowsAffected(), nil
}

// Delete elimina un movimiento. Solo lo usa la anulación, que revierte el stock en la misma tx.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

const totalsColumns = `
	COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'ENTRADA'), 0) AS entradas,
	COALESCE(SUM(m.quantity) FILTER (WHERE m.type = 'SAIDA'), 0) AS saidas`

func (r *MovementRepo) sumTotals(ctx context.Context, op string, q squirrel.SelectBuilder) (repository.MovementTotals, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return repository.MovementTotals{}, fmt.Errorf("%s: build query: %w", op, err)
	}
	var row totalsRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		return repository.MovementTotals{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return repository.MovementTotals{Entradas: row.Entradas, Saidas: row.Saidas}, nil
}

// Totals suma movimientos de ítems del dueño (incluye ítems con borrado lógico).
// Sin ItemID suma también los movimientos desvinculados que registró el dueño.
func (r *MovementRepo) Totals(ctx context.Context, ownerID string, f repository.SummaryFilter) (repository.MovementTotals, error) {
	zero := repository.MovementTotals{Entradas: decimal.Zero, Saidas: decimal.Zero}
	if ownerID == "" {
		return zero, nil
	}
	q := r.selectJoined(totalsColumns)
	if f.ItemID != "" {
		if !validID(f.ItemID) {
			return zero, nil
		}
		q = q.Where(squirrel.Eq{"m.item_id": f.ItemID, "i.owner_id": ownerID})
	} else {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"i.owner_id": ownerID},
			squirrel.Eq{"m.item_id": nil, "m.owner_id": ownerID},
		})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"m.created_at": *f.From})
	}
	if f.Until != nil {
		q = q.Where(squirrel.Lt{"m.created_at": *f.Until})
	}
	return r.sumTotals(ctx, "movement totals", q)
}

// ItemTotals suma todos los movimientos vinculados al ítem.
func (r *MovementRepo) ItemTotals(ctx context.Context, itemID string) (repository.MovementTotals, error) {
	q := r.builder().Select(totalsColumns).
		From("stock_movements m").
		Where(squirrel.Eq{"m.item_id": itemID})
	return r.sumTotals(ctx, "item movement totals", q)
}
