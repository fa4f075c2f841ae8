package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/calendar"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

var itemColumns = []string{
	"id", "name", "unit", "stock_quantity", "expiry_date", "note",
	"owner_id", "created_at", "updated_at", "deleted_at",
}

// itemRow fila de stock_items tal como la devuelve pgxscan.
type itemRow struct {
	ID            string          `db:"id"`
	Name          string          `db:"name"`
	Unit          string          `db:"unit"`
	StockQuantity decimal.Decimal `db:"stock_quantity"`
	ExpiryDate    *time.Time      `db:"expiry_date"`
	Note          string          `db:"note"`
	OwnerID       *string         `db:"owner_id"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	DeletedAt     *time.Time      `db:"deleted_at"`
}

func (r itemRow) toEntity() *entity.StockItem {
	item := &entity.StockItem{
		ID:            r.ID,
		Name:          r.Name,
		Unit:          r.Unit,
		StockQuantity: r.StockQuantity,
		ExpiryDate:    calendar.NormalizePtr(r.ExpiryDate),
		Note:          r.Note,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
		DeletedAt:     r.DeletedAt,
	}
	if r.OwnerID != nil {
		item.OwnerID = *r.OwnerID
	}
	return item
}

// nullableOwner: cadena vacía se guarda como NULL (ítem global).
func nullableOwner(ownerID string) *string {
	if ownerID == "" {
		return nil
	}
	return &ownerID
}

// StockItemRepo implementación de StockItemRepository sobre PostgreSQL (usable con pool o tx).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

func (r *StockItemRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// visibleTo dueño o global, y sin borrado lógico.
func visibleTo(ownerID string) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.Eq{"deleted_at": nil},
		squirrel.Or{squirrel.Eq{"owner_id": ownerID}, squirrel.Eq{"owner_id": nil}},
	}
}

func (r *StockItemRepo) getOne(ctx context.Context, op string, q squirrel.SelectBuilder) (*entity.StockItem, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build query: %w", op, err)
	}
	var row itemRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return row.toEntity(), nil
}

// Create inserta un ítem. La fecha de vencimiento se guarda como DATE.
func (r *StockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	item.ExpiryDate = calendar.NormalizePtr(item.ExpiryDate)
	query, args, err := r.builder().Insert("stock_items").
		Columns(itemColumns...).
		Values(item.ID, item.Name, item.Unit, item.StockQuantity, item.ExpiryDate, item.Note,
			nullableOwner(item.OwnerID), item.CreatedAt, item.UpdatedAt, item.DeletedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("create stock item: build query: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create stock item: %w", mapError(err))
	}
	return nil
}

// GetVisible obtiene el ítem si el dueño lo ve (propio o global, no borrado).
func (r *StockItemRepo) GetVisible(ctx context.Context, id, ownerID string) (*entity.StockItem, error) {
	if !validID(id) || ownerID == "" {
		return nil, nil
	}
	return r.getOne(ctx, "get visible stock item", r.builder().Select(itemColumns...).
		From("stock_items").
		Where(squirrel.Eq{"id": id}).
		Where(visibleTo(ownerID)))
}

// GetVisibleForUpdate igual que GetVisible pero bloquea la fila (SELECT FOR UPDATE).
func (r *StockItemRepo) GetVisibleForUpdate(ctx context.Context, id, ownerID string) (*entity.StockItem, error) {
	if !validID(id) || ownerID == "" {
		return nil, nil
	}
	return r.getOne(ctx, "get visible stock item for update", r.builder().Select(itemColumns...).
		From("stock_items").
		Where(squirrel.Eq{"id": id}).
		Where(visibleTo(ownerID)).
		Suffix("FOR UPDATE"))
}

// GetOwnedForUpdate dueño exacto, incluye ítems con borrado lógico.
func (r *StockItemRepo) GetOwnedForUpdate(ctx context.Context, id, ownerID string) (*entity.StockItem, error) {
	if !validID(id) || ownerID == "" {
		return nil, nil
	}
	return r.getOne(ctx, "get owned stock item for update", r.builder().Select(itemColumns...).
		From("stock_items").
		Where(squirrel.Eq{"id": id, "owner_id": ownerID}).
		Suffix("FOR UPDATE"))
}

// GetByIDForUpdate bloquea la fila sin control de acceso.
func (r *StockItemRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get stock item for update", r.builder().Select(itemColumns...).
		From("stock_items").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE"))
}

// FindMergeCandidateForUpdate busca un ítem activo del dueño con igual nombre, unidad y vencimiento.
// Los ítems globales solo son candidatos con key.Global.
func (r *StockItemRepo) FindMergeCandidateForUpdate(ctx context.Context, key repository.MergeKey) (*entity.StockItem, error) {
	owner := squirrel.Eq{"owner_id": key.OwnerID}
	if key.Global {
		owner = squirrel.Eq{"owner_id": nil}
	} else if key.OwnerID == "" {
		return nil, nil
	}
	return r.getOne(ctx, "find merge candidate", r.builder().Select(itemColumns...).
		From("stock_items").
		Where(owner).
		Where(squirrel.Eq{"name": key.Name, "unit": key.Unit, "deleted_at": nil}).
		Where(squirrel.Expr("expiry_date IS NOT DISTINCT FROM ?::date", calendar.NormalizePtr(key.ExpiryDate))).
		OrderBy("created_at ASC").
		Limit(1).
		Suffix("FOR UPDATE"))
}

// ListVisible lista ítems visibles con filtros de fecha, ordenados por created_at desc.
func (r *StockItemRepo) ListVisible(ctx context.Context, ownerID string, f repository.ItemFilter) ([]*entity.StockItem, int, error) {
	if ownerID == "" {
		return []*entity.StockItem{}, 0, nil
	}
	where := squirrel.And{visibleTo(ownerID)}
	if f.CreatedFrom != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *f.CreatedFrom})
	}
	if f.CreatedUntil != nil {
		where = append(where, squirrel.Lt{"created_at": *f.CreatedUntil})
	}
	if f.ExpiryFrom != nil {
		where = append(where, squirrel.GtOrEq{"expiry_date": *f.ExpiryFrom})
	}
	if f.ExpiryUntil != nil {
		where = append(where, squirrel.Lt{"expiry_date": *f.ExpiryUntil})
	}

	countQuery, countArgs, err := r.builder().Select("COUNT(*)").From("stock_items").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("count stock items: build query: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock items: %w", mapError(err))
	}

	limit, offset := pageBounds(f.Limit, f.Offset)
	query, args, err := r.builder().Select(itemColumns...).
		From("stock_items").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("list stock items: build query: %w", err)
	}
	var rows []itemRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list stock items: %w", mapError(err))
	}
	items := make([]*entity.StockItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, total, nil
}

// UpdateMetadata actualiza name, unit, expiry_date y note. No toca stock_quantity.
func (r *StockItemRepo) UpdateMetadata(ctx context.Context, item *entity.StockItem) error {
	query, args, err := r.builder().Update("stock_items").
		Set("name", item.Name).
		Set("unit", item.Unit).
		Set("expiry_date", calendar.NormalizePtr(item.ExpiryDate)).
		Set("note", item.Note).
		Set("updated_at", item.UpdatedAt).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("update stock item: build query: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update stock item: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ApplyStockDelta suma delta en la BD y devuelve el valor persistido.
// El CHECK (stock_quantity >= 0) es la última barrera contra stock negativo.
func (r *StockItemRepo) ApplyStockDelta(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE stock_items
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock_quantity`
	var stored decimal.Decimal
	if err := r.q.QueryRow(ctx, query, id, delta).Scan(&stored); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrItemNotFound
		}
		return decimal.Zero, fmt.Errorf("apply stock delta: %w", mapError(err))
	}
	return stored, nil
}

// SetDeletedAt marca o limpia el borrado lógico.
func (r *StockItemRepo) SetDeletedAt(ctx context.Context, id string, at *time.Time) error {
	query := `UPDATE stock_items SET deleted_at = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("set deleted_at: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Delete elimina la fila. Los movimientos deben desvincularse antes (o quedan en NULL por la FK).
func (r *StockItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM stock_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete stock item: %w", mapError(err))
	}
	return nil
}
