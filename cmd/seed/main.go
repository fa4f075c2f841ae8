// seed carga el catálogo de ítems globales (visibles para todos los usuarios) desde un YAML.
//
// Uso: go run ./cmd/seed [-file catalog.yaml] [-actor system]
//
// Formato:
//
//	items:
//	  - name: Harina de trigo
//	    unit: kg
//	    quantity: 25
//	    expiryDate: 2026-12-31
//	    note: proveedor habitual
//
// Las entradas que ya existen como ítem global (mismo nombre, unidad y vencimiento) se omiten.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/bolt"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// catalogFile estructura del YAML. Las cantidades se leen como texto para no perder precisión.
type catalogFile struct {
	Actor string `mapstructure:"actor"`
	Items []struct {
		Name       string `mapstructure:"name"`
		Unit       string `mapstructure:"unit"`
		Quantity   string `mapstructure:"quantity"`
		ExpiryDate string `mapstructure:"expiryDate"`
		Note       string `mapstructure:"note"`
	} `mapstructure:"items"`
}

func main() {
	file := flag.String("file", "catalog.yaml", "ruta del catálogo YAML")
	actor := flag.String("actor", "", "identidad que registra los movimientos iniciales (por defecto la del YAML o \"system\")")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	catalog, err := readCatalog(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("leer catálogo")
	}
	entries, err := toEntries(catalog)
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo inválido")
	}
	actorID := firstNonEmpty(*actor, catalog.Actor, "system")

	ctx := context.Background()
	var txRunner inventory.TxRunner
	if cfg.Store.Driver == config.DriverBolt {
		store, err := bolt.Open(cfg.Store.BoltPath)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir bbolt")
		}
		defer store.Close()
		txRunner = bolt.NewTxRunner(store)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, postgres.MigrateUp); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		txRunner = postgres.NewTxRunner(pool)
	}

	res, err := inventory.NewCatalogUseCase(txRunner, nil).SeedGlobal(ctx, actorID, entries)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar catálogo")
	}
	log.Info().
		Int("created", res.Created).
		Int("skipped", res.Skipped).
		Str("actor", actorID).
		Msg("catálogo global cargado")
}

func readCatalog(path string) (*catalogFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c catalogFile
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decodificar: %w", err)
	}
	return &c, nil
}

func toEntries(c *catalogFile) ([]dto.CatalogEntry, error) {
	entries := make([]dto.CatalogEntry, 0, len(c.Items))
	for i, it := range c.Items {
		qty := decimal.Zero
		if s := strings.TrimSpace(it.Quantity); s != "" {
			var err error
			if qty, err = decimal.NewFromString(s); err != nil {
				return nil, fmt.Errorf("items[%d].quantity: %w", i, err)
			}
		}
		entries = append(entries, dto.CatalogEntry{
			Name:       it.Name,
			Unit:       it.Unit,
			ExpiryDate: it.ExpiryDate,
			Note:       it.Note,
			Quantity:   qty,
		})
	}
	return entries, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
