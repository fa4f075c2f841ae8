package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

func TestMapError(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code})
	}

	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(wrap("40001")), domain.ErrConflict, "serialization_failure es conflicto")
	assert.ErrorIs(t, mapError(wrap("40P01")), domain.ErrConflict, "deadlock es conflicto")
	assert.ErrorIs(t, mapError(wrap("23505")), domain.ErrDuplicate)
	assert.ErrorIs(t, mapError(wrap("23514")), domain.ErrInsufficientStock, "CHECK stock >= 0")

	other := errors.New("conexión cerrada")
	assert.Same(t, other, mapError(other), "errores desconocidos pasan sin cambios")
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("7b0f2f4e-8a51-4c55-9f1c-3d2f0c6d8a10"))
	assert.False(t, validID(""))
	assert.False(t, validID("harina"))
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(10, 20)
	assert.Equal(t, uint64(10), limit)
	assert.Equal(t, uint64(20), offset)

	limit, offset = pageBounds(-1, -100)
	assert.Zero(t, limit)
	assert.Zero(t, offset, "un offset negativo no se convierte en un uint64 enorme")
}
