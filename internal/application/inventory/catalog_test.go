package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

func TestSeedGlobal_IdempotentByKey(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()

	entries := []dto.CatalogEntry{
		{Name: "Agua", Unit: "l", Quantity: d("100")},
		{Name: "Agua", Unit: "l", ExpiryDate: "2026-01-01", Quantity: d("10")},
		{Name: "Bolsas", Unit: "un"},
	}
	res, err := e.catalog.SeedGlobal(ctx, "admin", entries)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)
	assert.Zero(t, res.Skipped)

	res, err = e.catalog.SeedGlobal(ctx, "admin", entries)
	require.NoError(t, err)
	assert.Zero(t, res.Created, "segunda carga no duplica")
	assert.Equal(t, 3, res.Skipped)

	list := e.listAll(t, ownerB)
	require.Len(t, list.Items, 3)
	for _, it := range list.Items {
		assert.Nil(t, it.OwnerID, "todos globales")
		rec := e.reconcile(t, ownerB, it.ID)
		assert.True(t, rec.Consistent, "%s consistente", it.Name)
	}

	// un ítem propio con la misma clave no bloquea el global
	e.intakeEntrada(t, ownerA, "Sal", "kg", "1")
	res, err = e.catalog.SeedGlobal(ctx, "admin", []dto.CatalogEntry{{Name: "Sal", Unit: "kg", Quantity: d("5")}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
}

func TestSeedGlobal_Validation(t *testing.T) {
	e := newEngine(t, domaininv.ZeroStockSoftDelete)
	ctx := context.Background()

	_, err := e.catalog.SeedGlobal(ctx, " ", []dto.CatalogEntry{{Name: "Agua", Unit: "l"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "actor requerido")

	_, err = e.catalog.SeedGlobal(ctx, "admin", []dto.CatalogEntry{
		{Name: "Agua", Unit: "l", Quantity: d("1")},
		{Name: "", Unit: "l"},
	})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "items[1]", valErr.Field)

	_, err = e.catalog.SeedGlobal(ctx, "admin", []dto.CatalogEntry{{Name: "Agua", Unit: "l", Quantity: d("-1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.catalog.SeedGlobal(ctx, "admin", []dto.CatalogEntry{{Name: "Agua", Unit: "l", ExpiryDate: "mañana"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, e.listAll(t, ownerA).Items, "nada se insertó")
}
