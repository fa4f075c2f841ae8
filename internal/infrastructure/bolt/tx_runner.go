package bolt

import (
	"context"

	"go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var tracer = otel.Tracer("stock-ledger/bolt")

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción bbolt.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run abre una tx de escritura exclusiva; si fn devuelve error se descarta todo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	movRepo repository.MovementRepository,
) error) error {
	return r.exec(ctx, true, fn)
}

// View abre una tx de solo lectura.
func (r *TxRunner) View(ctx context.Context, fn func(
	itemRepo repository.StockItemRepository,
	movRepo repository.MovementRepository,
) error) error {
	return r.exec(ctx, false, fn)
}

func (r *TxRunner) exec(ctx context.Context, writable bool, fn func(
	itemRepo repository.StockItemRepository,
	movRepo repository.MovementRepository,
) error) error {
	_, span := tracer.Start(ctx, "transaction", trace.WithAttributes(
		attribute.String("db.system", "bbolt"),
		attribute.Bool("tx.writable", writable),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}
	run := func(tx *bbolt.Tx) error {
		return fn(NewStockItemRepository(tx), NewMovementRepository(tx))
	}
	var err error
	if writable {
		err = r.store.db.Update(run)
	} else {
		err = r.store.db.View(run)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
