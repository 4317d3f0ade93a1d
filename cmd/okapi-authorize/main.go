package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/okapi/internal/api"
	"github.com/edvin/okapi/internal/api/handler"
	"github.com/edvin/okapi/internal/config"
	"github.com/edvin/okapi/internal/core"
	"github.com/edvin/okapi/internal/db"
	"github.com/edvin/okapi/internal/logging"
	"github.com/edvin/okapi/internal/metrics"
	"github.com/edvin/okapi/internal/session"
)

const (
	trustCachePrefix = "okapi:"
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("okapi-authorize stopped")
	}
}

type storage struct {
	tokens    core.TokenStore
	trust     core.TrustStore
	consumers core.ConsumerDirectory
	checks    map[string]api.ReadinessCheck
	closers   []func()
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	st := &storage{checks: map[string]api.ReadinessCheck{}}

	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		logger.Warn().Msg("using in-memory storage, state is lost on restart")
		mem := core.NewMemoryStorage()
		st.tokens, st.trust, st.consumers = mem, mem, mem
	default:
		if cfg.MigrateOnStart {
			logger.Info().Msg("running database migrations")
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)
		metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool)
		st.tokens = core.NewPGTokenStore(pool)
		st.trust = core.NewPGTrustStore(pool)
		st.consumers = core.NewPGConsumerDirectory(pool)
		st.checks["postgres"] = pool.Ping
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			st.close()
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		st.closers = append(st.closers, func() { _ = client.Close() })
		st.trust = core.NewCachedTrustStore(st.trust, client, trustCachePrefix, cfg.TrustCacheTTL, logger)
		st.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		logger.Info().Str("addr", opts.Addr).Dur("ttl", cfg.TrustCacheTTL).Msg("trust cache enabled")
	}

	return st, nil
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	tlsConfig, err := cfg.ServerTLS()
	if err != nil {
		return err
	}

	gate := session.New(session.Options{
		CookieName:    cfg.SessionCookie,
		Secret:        cfg.SessionSecret,
		Issuer:        cfg.SiteURL,
		LoginURL:      cfg.SiteURL + cfg.LoginPath,
		AuthorizePath: cfg.AuthorizePath,
		SiteLang:      cfg.SiteLang,
	})
	authorize := handler.NewAuthorize(
		core.NewFlow(st.tokens, st.trust, st.consumers),
		core.CallbackRouter{HomeURL: cfg.SiteURL + cfg.HomePath},
		gate,
		handler.Site{Name: cfg.SiteName, URL: cfg.SiteURL, Lang: cfg.SiteLang},
	)
	srv := api.NewServer(logger, cfg.AuthorizePath, authorize, st.checks, cfg.MetricsListenAddr == "")

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		TLSConfig:    tlsConfig,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	servers := []*http.Server{httpServer}
	if cfg.MetricsListenAddr != "" {
		servers = append(servers, metrics.NewServer(cfg.MetricsListenAddr, prometheus.DefaultGatherer))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info().Str("addr", s.Addr).Bool("tls", s.TLSConfig != nil).Msg("listening")
			var err error
			if s.TLSConfig != nil {
				err = s.ListenAndServeTLS("", "")
			} else {
				err = s.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
