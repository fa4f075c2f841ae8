// Package calendar normaliza fechas calendario (sin hora) a medianoche UTC.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const layoutDay = "2006-01-02"

// Normalize trunca t a la medianoche UTC de su fecha en UTC.
func Normalize(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizePtr versión para fechas opcionales.
func NormalizePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := Normalize(*t)
	return &n
}

// Parse acepta "YYYY-MM-DD" o un timestamp RFC3339 y devuelve la fecha a medianoche UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(layoutDay, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Normalize(t), nil
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q: se espera YYYY-MM-DD", s)
}

// ParseOptional devuelve nil para cadena vacía.
func ParseOptional(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// StartOfNextDay devuelve el inicio del día siguiente a t. Se usa como cota superior exclusiva
// para que un rango "hasta D" incluya todo el día D.
func StartOfNextDay(t time.Time) time.Time {
	return Normalize(t).AddDate(0, 0, 1)
}

// Range convierte cotas de días inclusivas en [from, until).
func Range(from, to *time.Time) (start, until *time.Time) {
	if from != nil {
		s := Normalize(*from)
		start = &s
	}
	if to != nil {
		u := StartOfNextDay(*to)
		until = &u
	}
	return start, until
}

// Format representa la fecha como YYYY-MM-DD.
func Format(t time.Time) string {
	return t.UTC().Format(layoutDay)
}

// Equal compara dos fechas opcionales por día calendario.
func Equal(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Normalize(*a).Equal(Normalize(*b))
}
