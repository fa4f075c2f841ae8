package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/bolt"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("zero_stock_policy", cfg.Store.ZeroStockPolicy).
		Msg("iniciando aplicación")

	policy, err := domaininv.ParseZeroStockPolicy(cfg.Store.ZeroStockPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("política de stock cero")
	}

	ctx := context.Background()
	txRunner, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer closeStore()

	deps := httpRouter.RouterDeps{
		JWTSecret: cfg.JWT.Secret,
		Logger:    log,
	}
	var recorder inventory.Recorder = inventory.NopRecorder{}
	if cfg.Metrics.Enabled {
		prom := metrics.New()
		recorder = prom
		deps.Observer = prom
		deps.MetricsHandler = prom.Handler()
	}

	deps.Visibility = inventory.NewVisibilityUseCase(txRunner)
	deps.Intake = inventory.NewIntakeUseCase(txRunner, policy, recorder)
	deps.Items = inventory.NewItemUseCase(txRunner, recorder)
	deps.RegisterMovement = inventory.NewRegisterMovementUseCase(txRunner, policy, recorder)
	deps.MovementQuery = inventory.NewMovementQueryUseCase(txRunner)
	deps.Summary = inventory.NewSummaryUseCase(txRunner)

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: toda petición con token será rechazada")
	}

	app := httpRouter.NewApp(cfg.App.Name)
	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore abre el almacenamiento configurado y devuelve su TxRunner.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (inventory.TxRunner, func(), error) {
	if cfg.Store.Driver == config.DriverBolt {
		store, err := bolt.Open(cfg.Store.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.Store.BoltPath).Msg("almacenamiento bbolt listo")
		return bolt.NewTxRunner(store), func() { _ = store.Close() }, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, postgres.MigrateUp); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return postgres.NewTxRunner(pool), pool.Close, nil
}
