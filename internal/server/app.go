// Package server initializes and runs the notekeeper server: it opens the
// database, applies migrations, picks the code store and notifier, and runs
// the HTTP API and the gRPC health endpoint until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/notekeeper/internal/server/notify"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/otps"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/dmitrijs2005/notekeeper/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/notekeeper/internal/server/grpc"
)

const (
	startupTimeout = 10 * time.Second
	requestTimeout = 30 * time.Second
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
	grpcServer *gs.GRPCServer
	closers    []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, syncLogger, err := newLogger(c)
	if err != nil {
		return nil, err
	}
	app := &App{config: c, logger: logger}
	app.closers = append(app.closers, syncLogger)

	if err := app.init(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	c := app.config

	shutdownTracing, err := telemetry.Init(ctx, "notekeeper", c.OTLPEndpoint)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdownTracing(sctx)
	})

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	if err := db.PingContext(startCtx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(startCtx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	codes, err := app.newCodeStore(startCtx, rm)
	if err != nil {
		return err
	}

	notifier, err := newNotifier(startCtx, c, app.logger)
	if err != nil {
		return err
	}
	if cl, ok := notifier.(notify.Closer); ok {
		app.closers = append(app.closers, cl.Close)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sessions := auth.NewSessionManager([]byte(c.SecretKey), c.SessionValidity())
	authService := services.NewAuthService(db, rm, codes, notifier, sessions, c, services.NewMetrics(registry), app.logger)
	noteService := services.NewNoteService(db, rm, c.StorageTimeout, app.logger)

	router := httpapi.NewRouter(authService, noteService, sessions, httpapi.Options{
		Cookie: auth.CookieOptions{
			Name:   c.CookieName,
			Secure: c.CookieSecure,
			MaxAge: c.SessionValidity(),
		},
		CORSOrigins:    c.CORSOrigins,
		RequestTimeout: requestTimeout,
		Gatherer:       registry,
		Metrics:        httpapi.NewHTTPMetrics(registry),
		Logger:         app.logger,
	})

	app.httpServer = httpapi.NewServer(c.HTTPAddr, router, app.logger)
	app.grpcServer = gs.NewGRPCServer(c.GRPCAddr, app.logger, db.PingContext)
	return nil
}

func (app *App) newCodeStore(ctx context.Context, rm repomanager.RepositoryManager) (otps.Store, error) {
	c := app.config
	switch c.OTPStore {
	case config.OTPStorePostgres:
		return otps.NewPostgresStore(app.db, rm.OTPs), nil
	case config.OTPStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		app.closers = append(app.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		return otps.NewRedisStore(client, c.OTPRetention), nil
	default:
		return nil, fmt.Errorf("unknown otp store %q", c.OTPStore)
	}
}

func newLogger(c *config.Config) (logging.Logger, func() error, error) {
	switch c.LogBackend {
	case "zap":
		z, err := logging.BuildZap(c.Environment, c.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return logging.NewZapLogger(z), z.Sync, nil
	case "", "slog":
		l, err := logging.NewJSONSlogLogger(os.Stdout, c.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return l, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown log backend %q", c.LogBackend)
	}
}

func newNotifier(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Notifier, error) {
	renderer := notify.NewRenderer(c.AppBaseURL)

	switch c.Notifier {
	case config.NotifierLog:
		return notify.NewLogNotifier(logger), nil
	case config.NotifierSMTP:
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUser,
			Password: c.SMTPPassword,
			From:     c.MailFrom,
		}, renderer)
	case config.NotifierSES:
		return notify.NewSESNotifier(ctx, notify.SESConfig{
			Region:    c.SESRegion,
			Endpoint:  c.SESEndpoint,
			AccessKey: c.AWSAccessKey,
			SecretKey: c.AWSSecretKey,
			From:      c.MailFrom,
		}, renderer)
	case config.NotifierNATS:
		return notify.NewNATSNotifier(c.NATSURL, c.NATSSubject)
	default:
		return nil, fmt.Errorf("unknown notifier %q", c.Notifier)
	}
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or a server fails, then releases resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(ctx, "App stopped")
}

// close runs closers in reverse order of acquisition.
func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil && app.logger != nil {
			app.logger.Warn(ctx, "close", "error", err)
		}
	}
	app.closers = nil
}
