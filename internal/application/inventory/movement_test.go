package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Aplicación de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_HarinaHastaCero(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()

	flour := e.intakeEntrada(t, ownerA, "Harina", "kg", "10")
	assert.True(t, d("10").Equal(flour.StockQuantity))

	out := e.mustMove(t, ownerA, flour.ID, entity.MovementTypeSaida, "3")
	assert.True(t, d("7").Equal(out.UpdatedItem.StockQuantity), "10 - 3 = 7")
	assert.Equal(t, ownerA, out.Movement.OwnerID)
	require.NotNil(t, out.Movement.ItemID)
	assert.Equal(t, flour.ID, *out.Movement.ItemID)

	_, err := e.move(ownerA, flour.ID, entity.MovementTypeSaida, "8")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, flour.ID, stockErr.ItemID)
	assert.True(t, d("8").Equal(stockErr.Requested))
	assert.True(t, d("7").Equal(stockErr.Available))

	rec := e.reconcile(t, ownerA, flour.ID)
	assert.True(t, d("7").Equal(rec.StockQuantity), "el rechazo no modifica el stock")
	assert.True(t, rec.Consistent)

	out = e.mustMove(t, ownerA, flour.ID, entity.MovementTypeSaida, "7")
	assert.True(t, out.UpdatedItem.StockQuantity.IsZero())
	assert.NotNil(t, out.UpdatedItem.DeletedAt, "stock cero aplica borrado lógico")

	assert.Empty(t, e.listAll(t, ownerA).Items, "el ítem en cero deja de ser visible")

	sum, err := e.summary.Summarize(ctx, ownerA, dto.SummaryRequest{})
	require.NoError(t, err)
	assert.True(t, d("10").Equal(sum.Entradas))
	assert.True(t, d("10").Equal(sum.Saidas))
	assert.True(t, sum.Net.IsZero())

	assert.Equal(t, 1, e.recorder.count(e.recorder.rejected, inventory.RejectInsufficientStock))
	assert.Equal(t, 1, e.recorder.count(e.recorder.deleted, inventory.DeletedAtZeroStock))
}

func TestRegisterMovement_Validation(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	item := e.intakeEntrada(t, ownerA, "Azúcar", "kg", "5")

	_, err := e.move("", item.ID, entity.MovementTypeEntrada, "1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "anónimo no escribe")

	_, err = e.move(ownerA, item.ID, "AJUSTE", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.move(ownerA, item.ID, entity.MovementTypeEntrada, "0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = e.move(ownerA, item.ID, entity.MovementTypeSaida, "-2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa")

	_, err = e.move(ownerA, "", entity.MovementTypeEntrada, "1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.move(ownerB, item.ID, entity.MovementTypeEntrada, "1")
	assert.ErrorIs(t, err, domain.ErrItemNotFound, "B no ve el ítem de A")

	assert.True(t, e.reconcile(t, ownerA, item.ID).StockQuantity.Equal(d("5")))
}

func TestRegisterMovement_GlobalItem(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()
	salt := e.seedGlobal(t, "Sal", "kg", "20")

	out := e.mustMove(t, ownerB, salt.ID, entity.MovementTypeSaida, "2")
	assert.Equal(t, ownerB, out.Movement.OwnerID, "el movimiento queda a nombre de quien actúa")
	assert.Nil(t, out.UpdatedItem.OwnerID, "el ítem sigue siendo global")
	assert.True(t, d("18").Equal(out.UpdatedItem.StockQuantity))

	listB, err := e.query.ListMovements(ctx, ownerB, dto.ListMovementsRequest{ItemID: salt.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, listB.Total, "B ve su propio movimiento")

	listA, err := e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{ItemID: salt.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, listA.Total, "A no ve movimientos ajenos sobre ítems globales")

	sumB, err := e.summary.Summarize(ctx, ownerB, dto.SummaryRequest{})
	require.NoError(t, err)
	assert.True(t, sumB.Saidas.IsZero(), "el resumen solo cubre ítems propios")
}

func TestRegisterMovement_ConcurrentSaidaNeverOverdraws(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()
	item := e.intakeEntrada(t, ownerA, "Huevos", "un", "10")

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.move(ownerA, item.ID, entity.MovementTypeSaida, "1")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded, "exactamente el stock disponible se consume")
	for _, err := range failures {
		assert.True(t,
			errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrItemNotFound),
			"fallo inesperado: %v", err)
	}

	sum, err := e.summary.Summarize(ctx, ownerA, dto.SummaryRequest{ItemID: item.ID})
	require.NoError(t, err)
	assert.True(t, d("10").Equal(sum.Saidas))
	assert.True(t, sum.Net.IsZero(), "nunca queda stock negativo")
}

func TestRegisterMovement_RandomSequenceKeepsLedgerInvariant(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	// 200 pasos de a lo sumo 2.25 nunca llevan 500 a cero: el ítem sigue visible todo el test.
	item := e.intakeEntrada(t, ownerA, "Manteca", "kg", "500")
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		movType := entity.MovementTypeEntrada
		if rnd.Intn(2) == 0 {
			movType = entity.MovementTypeSaida
		}
		qty := d("0.25").Mul(decimal.NewFromInt(int64(1 + rnd.Intn(9))))
		_, err := e.movements.RegisterMovement(context.Background(), ownerA, dto.RegisterMovementRequest{
			ItemID:   item.ID,
			Type:     movType,
			Quantity: qty,
		})
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
		rec := e.reconcile(t, ownerA, item.ID)
		require.True(t, rec.Consistent, "paso %d: stock %s vs ledger %s", i, rec.StockQuantity, rec.LedgerBalance)
		require.False(t, rec.StockQuantity.IsNegative())
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Política de stock cero
// ──────────────────────────────────────────────────────────────────────────────

func TestZeroStock_HardDeleteDetachesMovements(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockHardDelete)
	ctx := context.Background()
	item := e.intakeEntrada(t, ownerA, "Crema", "l", "4")

	out := e.mustMove(t, ownerA, item.ID, entity.MovementTypeSaida, "4")
	assert.Nil(t, out.Movement.ItemID, "el movimiento queda desvinculado")
	assert.NotNil(t, out.UpdatedItem.DeletedAt)

	_, err := e.visibility.GetVisible(ctx, ownerA, item.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound, "la fila se eliminó")

	movs, err := e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, movs.Total, "el ledger conserva la historia")
	for _, m := range movs.Items {
		assert.Nil(t, m.ItemID)
	}

	sum, err := e.summary.Summarize(ctx, ownerA, dto.SummaryRequest{})
	require.NoError(t, err)
	assert.True(t, d("4").Equal(sum.Entradas))
	assert.True(t, d("4").Equal(sum.Saidas))
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación de movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteMovement_ReversesStock(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()
	item := e.intakeEntrada(t, ownerA, "Cacao", "kg", "6")

	saida := e.mustMove(t, ownerA, item.ID, entity.MovementTypeSaida, "2")
	out, err := e.movements.DeleteMovement(ctx, ownerA, saida.Movement.ID)
	require.NoError(t, err)
	require.NotNil(t, out.UpdatedItem)
	assert.True(t, d("6").Equal(out.UpdatedItem.StockQuantity), "anular una SAIDA devuelve el stock")

	_, err = e.query.GetMovement(ctx, ownerA, saida.Movement.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)
	assert.True(t, e.reconcile(t, ownerA, item.ID).Consistent)
}

func TestDeleteMovement_ConsumedEntradaFails(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()
	item := e.intakeEntrada(t, ownerA, "Levadura", "kg", "2")
	entrada := e.mustMove(t, ownerA, item.ID, entity.MovementTypeEntrada, "5")
	e.mustMove(t, ownerA, item.ID, entity.MovementTypeSaida, "6")

	_, err := e.movements.DeleteMovement(ctx, ownerA, entrada.Movement.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock, "la ENTRADA ya se consumió")

	rec := e.reconcile(t, ownerA, item.ID)
	assert.True(t, d("1").Equal(rec.StockQuantity), "el rechazo no cambia nada")
	assert.True(t, rec.Consistent)
}

func TestDeleteMovement_RestoresItemDeletedAtZero(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()
	item := e.intakeEntrada(t, ownerA, "Miel", "kg", "3")
	saida := e.mustMove(t, ownerA, item.ID, entity.MovementTypeSaida, "3")
	require.Empty(t, e.listAll(t, ownerA).Items)

	out, err := e.movements.DeleteMovement(ctx, ownerA, saida.Movement.ID)
	require.NoError(t, err)
	assert.Nil(t, out.UpdatedItem.DeletedAt, "el ítem vuelve a estar activo")

	restored, err := e.visibility.GetVisible(ctx, ownerA, item.ID)
	require.NoError(t, err)
	assert.True(t, d("3").Equal(restored.StockQuantity))
}

func TestDeleteMovement_ReversalToZeroAppliesPolicy(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()
	item := e.intakeEntrada(t, ownerA, "Vainilla", "ml", "1")
	entrada := e.mustMove(t, ownerA, item.ID, entity.MovementTypeEntrada, "4")
	e.mustMove(t, ownerA, item.ID, entity.MovementTypeSaida, "1")

	out, err := e.movements.DeleteMovement(ctx, ownerA, entrada.Movement.ID)
	require.NoError(t, err)
	assert.True(t, out.UpdatedItem.StockQuantity.IsZero())
	assert.NotNil(t, out.UpdatedItem.DeletedAt)
}

func TestDeleteMovement_Access(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()
	item := e.intakeEntrada(t, ownerA, "Nuez", "kg", "2")
	mov := e.mustMove(t, ownerA, item.ID, entity.MovementTypeEntrada, "1")

	_, err := e.movements.DeleteMovement(ctx, ownerB, mov.Movement.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound, "B no accede al movimiento de A")

	_, err = e.movements.DeleteMovement(ctx, "", mov.Movement.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDeleteMovement_Detached(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()
	item := e.intakeEntrada(t, ownerA, "Pasas", "kg", "2")
	_, err := e.items.DeleteItem(ctx, ownerA, item.ID)
	require.NoError(t, err)

	movs, err := e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{})
	require.NoError(t, err)
	require.Len(t, movs.Items, 1)

	out, err := e.movements.DeleteMovement(ctx, ownerA, movs.Items[0].ID)
	require.NoError(t, err)
	assert.Nil(t, out.UpdatedItem, "sin ítem no hay stock que revertir")
}
