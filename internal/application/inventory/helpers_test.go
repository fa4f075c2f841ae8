package inventory_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/bolt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	ownerA = "user-a"
	ownerB = "user-b"
)

// engine agrupa los casos de uso sobre un bbolt temporal.
type engine struct {
	tx         inventory.TxRunner
	visibility *inventory.VisibilityUseCase
	intake     *inventory.IntakeUseCase
	items      *inventory.ItemUseCase
	movements  *inventory.RegisterMovementUseCase
	query      *inventory.MovementQueryUseCase
	summary    *inventory.SummaryUseCase
	catalog    *inventory.CatalogUseCase
	recorder   *countingRecorder
}

func newEngine(t *testing.T, policy domaininv.ZeroStockPolicy) *engine {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err, "debe abrirse el store bbolt")
	t.Cleanup(func() { _ = store.Close() })

	tx := bolt.NewTxRunner(store)
	rec := &countingRecorder{}
	return &engine{
		tx:         tx,
		visibility: inventory.NewVisibilityUseCase(tx),
		intake:     inventory.NewIntakeUseCase(tx, policy, rec),
		items:      inventory.NewItemUseCase(tx, rec),
		movements:  inventory.NewRegisterMovementUseCase(tx, policy, rec),
		query:      inventory.NewMovementQueryUseCase(tx),
		summary:    inventory.NewSummaryUseCase(tx),
		catalog:    inventory.NewCatalogUseCase(tx, rec),
		recorder:   rec,
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// intakeEntrada da de alta un ítem con stock inicial como ENTRADA.
func (e *engine) intakeEntrada(t *testing.T, ownerID, name, unit, qty string) *dto.ItemResponse {
	t.Helper()
	out, err := e.intake.Intake(context.Background(), ownerID, dto.IntakeItemRequest{
		Name:            name,
		Unit:            unit,
		OpeningMovement: &dto.OpeningMovementRequest{Quantity: d(qty)},
	})
	require.NoError(t, err, "el ingreso debe aceptarse")
	return out
}

func (e *engine) move(ownerID, itemID, movType, qty string) (*dto.RegisterMovementResponse, error) {
	return e.movements.RegisterMovement(context.Background(), ownerID, dto.RegisterMovementRequest{
		ItemID:   itemID,
		Type:     movType,
		Quantity: d(qty),
	})
}

func (e *engine) mustMove(t *testing.T, ownerID, itemID, movType, qty string) *dto.RegisterMovementResponse {
	t.Helper()
	out, err := e.move(ownerID, itemID, movType, qty)
	require.NoError(t, err, "el movimiento %s %s debe aplicarse", movType, qty)
	return out
}

// seedGlobal crea un ítem global por la vía administrativa y lo devuelve visto por ownerA.
func (e *engine) seedGlobal(t *testing.T, name, unit, qty string) *dto.ItemResponse {
	t.Helper()
	_, err := e.catalog.SeedGlobal(context.Background(), "system", []dto.CatalogEntry{
		{Name: name, Unit: unit, Quantity: d(qty)},
	})
	require.NoError(t, err)
	list, err := e.visibility.ListVisible(context.Background(), ownerA, dto.ListItemsRequest{PageRequest: dto.PageRequest{Limit: 100}})
	require.NoError(t, err)
	for _, it := range list.Items {
		if it.OwnerID == nil && it.Name == name && it.Unit == unit {
			item := it
			return &item
		}
	}
	t.Fatalf("no se encontró el ítem global %s", name)
	return nil
}

// seedItemAt inserta un ítem con fecha de creación controlada y su ENTRADA inicial en esa fecha.
func (e *engine) seedItemAt(t *testing.T, ownerID, name string, createdAt time.Time, expiry *time.Time, qty string) *entity.StockItem {
	t.Helper()
	item := &entity.StockItem{
		ID:            uuid.New().String(),
		Name:          name,
		Unit:          "kg",
		StockQuantity: decimal.Zero,
		ExpiryDate:    expiry,
		OwnerID:       ownerID,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
	err := e.tx.Run(context.Background(), func(itemRepo repository.StockItemRepository, movRepo repository.MovementRepository) error {
		if err := itemRepo.Create(context.Background(), item); err != nil {
			return err
		}
		return e.insertMovement(itemRepo, movRepo, item.ID, ownerID, entity.MovementTypeEntrada, qty, createdAt)
	})
	require.NoError(t, err)
	item.StockQuantity = d(qty)
	return item
}

// seedMovementAt registra un movimiento con fecha controlada, manteniendo el stock alineado.
func (e *engine) seedMovementAt(t *testing.T, itemID, ownerID, movType, qty string, at time.Time) {
	t.Helper()
	err := e.tx.Run(context.Background(), func(itemRepo repository.StockItemRepository, movRepo repository.MovementRepository) error {
		return e.insertMovement(itemRepo, movRepo, itemID, ownerID, movType, qty, at)
	})
	require.NoError(t, err)
}

func (e *engine) insertMovement(
	itemRepo repository.StockItemRepository,
	movRepo repository.MovementRepository,
	itemID, ownerID, movType, qty string,
	at time.Time,
) error {
	ctx := context.Background()
	if err := movRepo.Create(ctx, &entity.Movement{
		ID:        uuid.New().String(),
		Type:      movType,
		Quantity:  d(qty),
		ItemID:    itemID,
		OwnerID:   ownerID,
		CreatedAt: at,
	}); err != nil {
		return err
	}
	_, err := itemRepo.ApplyStockDelta(ctx, itemID, domaininv.SignedDelta(movType, d(qty)))
	return err
}

func (e *engine) reconcile(t *testing.T, ownerID, itemID string) *dto.ReconciliationResponse {
	t.Helper()
	out, err := e.summary.Reconcile(context.Background(), ownerID, itemID)
	require.NoError(t, err)
	return out
}

func (e *engine) listAll(t *testing.T, ownerID string) *dto.ItemListResponse {
	t.Helper()
	out, err := e.visibility.ListVisible(context.Background(), ownerID, dto.ListItemsRequest{PageRequest: dto.PageRequest{Limit: 100}})
	require.NoError(t, err)
	return out
}

// countingRecorder cuenta eventos del motor.
type countingRecorder struct {
	mu       sync.Mutex
	applied  map[string]int
	rejected map[string]int
	intakes  map[bool]int
	deleted  map[string]int
}

func (r *countingRecorder) inc(m *map[string]int, k string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if *m == nil {
		*m = map[string]int{}
	}
	(*m)[k]++
}

func (r *countingRecorder) MovementApplied(t string)  { r.inc(&r.applied, t) }
func (r *countingRecorder) MovementRejected(s string) { r.inc(&r.rejected, s) }
func (r *countingRecorder) ItemDeleted(s string)      { r.inc(&r.deleted, s) }
func (r *countingRecorder) ItemIntake(merged bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intakes == nil {
		r.intakes = map[bool]int{}
	}
	r.intakes[merged]++
}

func (r *countingRecorder) count(m map[string]int, k string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return m[k]
}
