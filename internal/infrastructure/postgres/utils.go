package postgres

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	sqlStateUniqueViolation      = "23505"
	sqlStateCheckViolation       = "23514"
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == sqlStateUniqueViolation
}

// isSerializationFailure detecta los errores que Postgres pide reintentar (40001, 40P01).
func isSerializationFailure(err error) bool {
	code := pgCode(err)
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}

// mapError traduce errores del driver a errores de dominio conservando la causa.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case isSerializationFailure(err):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	case pgCode(err) == sqlStateCheckViolation:
		return fmt.Errorf("%w: %v", domain.ErrInsufficientStock, err)
	}
	return err
}

// validID evita enviar a Postgres ids que no son UUID (el cast fallaría con 22P02).
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// pageBounds convierte limit/offset a los uint64 de squirrel; negativos cuentan como 0.
func pageBounds(limit, offset int) (uint64, uint64) {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}
