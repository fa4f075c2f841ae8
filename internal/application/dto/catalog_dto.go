package dto

import "github.com/shopspring/decimal"

// CatalogEntry ítem global del catálogo inicial.
type CatalogEntry struct {
	Name       string
	Unit       string
	ExpiryDate string // YYYY-MM-DD, opcional
	Note       string
	Quantity   decimal.Decimal // stock inicial (ENTRADA); cero = sin movimiento
}

// CatalogSeedResult resumen de una carga de catálogo.
type CatalogSeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
