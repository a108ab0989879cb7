package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"fluxo-storefront/internal/config"
	"fluxo-storefront/internal/db"
	"fluxo-storefront/internal/events"
	"fluxo-storefront/internal/httpserver"
	"fluxo-storefront/internal/migrate"
	"fluxo-storefront/internal/notify"
	cartrepo "fluxo-storefront/internal/repository/cart"
	draftrepo "fluxo-storefront/internal/repository/draft"
	productrepo "fluxo-storefront/internal/repository/product"
	"fluxo-storefront/internal/seed"
	authsvc "fluxo-storefront/internal/service/auth"
	cartsvc "fluxo-storefront/internal/service/cart"
	categorysvc "fluxo-storefront/internal/service/category"
	checkoutsvc "fluxo-storefront/internal/service/checkout"
	productsvc "fluxo-storefront/internal/service/product"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pool    *pgxpool.Pool
		checks  []httpserver.ReadyCheck
		closers []func() error
	)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Printf("close: %v", err)
			}
		}
	}()

	if cfg.DBConnString != "" || cfg.DraftStore == config.DraftStorePostgres {
		p, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		if err := migrate.Apply(ctx, p); err != nil {
			p.Close()
			logger.Fatalf("apply migrations: %v", err)
		}
		pool = p
		closers = append(closers, func() error { p.Close(); return nil })
		checks = append(checks, httpserver.ReadyCheck{Name: "postgres", Ping: p.Ping})
	}

	var (
		productRepo productrepo.Repository
		cartRepo    cartrepo.Repository
	)
	if pool != nil {
		productRepo = productrepo.NewPostgres(pool, logger)
		cartRepo = cartrepo.NewPostgres(pool)
	} else {
		logger.Printf("DB_DSN not set, using in-memory catalog and carts")
		productRepo = productrepo.NewMemory(seed.Catalog()...)
		cartRepo = cartrepo.NewMemory()
	}

	drafts, draftChecks, closeDrafts, err := openDraftStore(ctx, cfg, pool)
	if err != nil {
		logger.Fatalf("open draft store: %v", err)
	}
	checks = append(checks, draftChecks...)
	if closeDrafts != nil {
		closers = append(closers, closeDrafts)
	}
	logger.Printf("checkout drafts stored in %s", cfg.DraftStore)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaTopic, log.New(os.Stdout, "[events] ", log.LstdFlags|log.LUTC|log.Lshortfile), cfg.KafkaBrokers...)
		logger.Printf("publishing payment events to %s", cfg.KafkaTopic)
	}
	closers = append(closers, publisher.Close)

	checkoutLogger := log.New(os.Stdout, "[checkout] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	inbox := notify.NewInbox(notify.DefaultLimit, notify.DefaultTTL, logger)
	cartService := cartsvc.New(cartRepo, productRepo)
	checkoutService := checkoutsvc.New(
		checkoutsvc.NewStore(drafts, checkoutLogger),
		cartService,
		checkoutsvc.NewSimulator(cfg.PaymentDelay, nil),
		inbox,
		publisher,
		checkoutLogger,
	)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		ProductSvc:    productsvc.New(productRepo),
		CategorySvc:   categorysvc.New(productRepo),
		CartSvc:       cartService,
		AuthSvc:       authsvc.New(cfg.SessionSecret, cfg.AuthDelay, logger),
		CheckoutSvc:   checkoutService,
		Notifications: inbox,
		ReadyChecks:   checks,
		CORSOrigins:   cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Printf("server error: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// openDraftStore selects the checkout draft backend named by DRAFT_STORE.
func openDraftStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) (draftrepo.Repository, []httpserver.ReadyCheck, func() error, error) {
	switch cfg.DraftStore {
	case config.DraftStoreMemory:
		return draftrepo.NewMemory(), nil, nil, nil
	case config.DraftStorePostgres:
		return draftrepo.NewPostgres(pool), nil, nil, nil
	case config.DraftStoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		if err := ping(ctx); err != nil {
			client.Close()
			return nil, nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return draftrepo.NewRedis(client, draftrepo.DefaultRedisTTL), []httpserver.ReadyCheck{{Name: "redis", Ping: ping}}, client.Close, nil
	case config.DraftStoreSQLite:
		repo, err := draftrepo.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return repo, nil, repo.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown draft store %q", cfg.DraftStore)
}
