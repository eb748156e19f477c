// Package server assembles the ingestion service: it opens the store pool,
// builds the services and runs the HTTP and optional gRPC health servers
// until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/logging"
	"github.com/dmitrijs2005/camfeed/internal/metrics"
	"github.com/dmitrijs2005/camfeed/internal/server/archive"
	"github.com/dmitrijs2005/camfeed/internal/server/config"
	"github.com/dmitrijs2005/camfeed/internal/server/httpapi"
	"github.com/dmitrijs2005/camfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/camfeed/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/camfeed/internal/server/grpc"
)

const poolMonitorInterval = 30 * time.Second

var (
	// openDB is a seam for tests; production uses the pgx database/sql driver.
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newArchiver = func(ctx context.Context, o archive.Options) (archive.Archiver, error) {
		return archive.NewS3Archiver(ctx, o)
	}

	logOutput io.Writer = os.Stdout
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.HTTPServer
	health *gs.HealthServer
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.NewJSONLogger(logOutput, c.LogLevel)
	if err != nil {
		return nil, err
	}

	s, err := c.Schema()
	if err != nil {
		return nil, err
	}

	rm, err := repomanager.NewPostgresRepositoryManager(s, c.HistoryTable, c.LatestTable)
	if err != nil {
		return nil, fmt.Errorf("repository init error: %w", err)
	}

	var arch archive.Archiver
	if c.S3Bucket != "" {
		arch, err = newArchiver(context.Background(), archive.Options{
			Region:       c.S3Region,
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("archive init error: %w", err)
		}
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)

	rs := services.NewReconcileService(db, rm, c.StoreTimeout, logger)
	ds := services.NewDeviceService(db, rm, c.StoreTimeout)

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		http: httpapi.NewHTTPServer(httpapi.Options{
			Addr:            c.ListenAddr,
			IngestPath:      c.IngestPath,
			MaxBodyBytes:    c.MaxBodyBytes,
			MetricsEnabled:  c.MetricsEnabled,
			ArchiveTimeout:  c.StoreTimeout,
			ShutdownTimeout: c.ShutdownTimeout,
		}, s, rs, ds, arch, logger),
	}
	if c.HealthAddrGRPC != "" {
		app.health = gs.NewHealthServer(c.HealthAddrGRPC, ds, c.HealthInterval, logger)
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled, a signal arrives or a server fails. The
// pool is closed after every server has stopped.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "listen_addr", app.config.ListenAddr, "schema_variant", app.config.SchemaVariant)

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.http.Run(gctx)
	})

	if app.health != nil {
		g.Go(func() error {
			return app.health.Run(gctx)
		})
	}

	if app.config.MetricsEnabled {
		g.Go(func() error {
			metrics.MonitorPool(gctx, app.db.Stats, poolMonitorInterval, app.logger)
			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(ctx, "db close failed", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
