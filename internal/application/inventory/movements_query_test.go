package inventory_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

func TestListMovements_AccessRule(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()

	own := e.intakeEntrada(t, ownerA, "Harina", "kg", "10")
	global := e.seedGlobal(t, "Agua", "l", "100")
	onGlobal := e.mustMove(t, ownerB, global.ID, "SAIDA", "1")

	a, err := e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Total, "A ve lo propio pero no lo que B registró sobre un global")

	b, err := e.query.ListMovements(ctx, ownerB, dto.ListMovementsRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, b.Total)
	assert.Equal(t, onGlobal.Movement.ID, b.Items[0].ID)

	_, err = e.query.GetMovement(ctx, ownerA, onGlobal.Movement.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	got, err := e.query.GetMovement(ctx, ownerB, onGlobal.Movement.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ItemID)
	assert.Equal(t, global.ID, *got.ItemID)
	assert.Equal(t, ownerB, got.OwnerID)

	anon, err := e.query.ListMovements(ctx, "", dto.ListMovementsRequest{})
	require.NoError(t, err)
	assert.Empty(t, anon.Items)
	_, err = e.query.GetMovement(ctx, "", a.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	byItem, err := e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{ItemID: own.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, byItem.Total)
}

func TestListMovements_Filters(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()

	item := e.seedItemAt(t, ownerA, "Harina", day("2025-05-01"), nil, "50")
	e.seedMovementAt(t, item.ID, ownerA, entity.MovementTypeSaida, "1", day("2025-05-02"))
	e.seedMovementAt(t, item.ID, ownerA, entity.MovementTypeSaida, "2", day("2025-05-03").Add(12*time.Hour))
	e.seedMovementAt(t, item.ID, ownerA, entity.MovementTypeEntrada, "3", day("2025-05-04"))

	out, err := e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{Type: "saida"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Total)
	assert.True(t, d("2").Equal(out.Items[0].Quantity), "más reciente primero")
	assert.True(t, d("1").Equal(out.Items[1].Quantity))

	out, err = e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{From: "2025-05-03", To: "2025-05-04"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)

	out, err = e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{PageRequest: dto.PageRequest{Page: 2, Limit: 3}})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, entity.MovementTypeEntrada, out.Items[0].Type)
	assert.True(t, d("50").Equal(out.Items[0].Quantity), "la ENTRADA inicial es la más antigua")

	out, err = e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{PageRequest: dto.PageRequest{Page: math.MaxInt, Limit: 3}})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.Equal(t, 4, out.Total)

	_, err = e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{Type: "AJUSTE"})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "type", valErr.Field)

	_, err = e.query.ListMovements(ctx, ownerA, dto.ListMovementsRequest{From: "2025-05-04", To: "2025-05-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
