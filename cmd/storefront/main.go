package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"storefront-client/config"
	"storefront-client/internal/broker"
	"storefront-client/internal/gateway"
	"storefront-client/internal/models"
	"storefront-client/internal/notify"
	"storefront-client/internal/session"
	"storefront-client/internal/store"
	"storefront-client/internal/util"

	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "login email for the demo flow")
	password := flag.String("password", "", "login password for the demo flow")
	keyword := flag.String("keyword", "", "catalog search keyword")
	flag.Parse()

	cfg := config.Load()

	if err := util.InitLogger(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront client")

	tp, err := util.InitTracer("storefront-client", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	sessionStore, cleanup, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize session storage: %v", err)
	}
	defer cleanup()

	sessions, err := session.NewManager(sessionStore)
	if err != nil {
		log.Fatalf("Failed to load session: %v", err)
	}

	gw := gateway.New(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSeconds)*time.Second, sessions)
	notifier := notify.NewNotifier()

	var activity *broker.ActivityPublisher
	if cfg.Activity.Enabled() {
		producer := broker.NewProducer(cfg.Activity.Brokers, cfg.Activity.Topic)
		defer producer.Close()
		activity = broker.NewActivityPublisher(producer)
		logger.Info("Activity stream enabled", zap.Strings("brokers", cfg.Activity.Brokers))
	}

	st := store.New(gw, sessions, notifier, activity)

	notices, stopNotices := notifier.Subscribe()
	defer stopNotices()
	go func() {
		for notice := range notices {
			fmt.Printf("[%s] %s\n", notice.Level, notice.Message)
		}
	}()

	unsubscribe := st.Subscribe(func(snap store.Snapshot) {
		logger.Debug("State transition",
			zap.String("auth", snap.Auth.Lifecycle.Status.String()),
			zap.String("cart", snap.Cart.Lifecycle.Status.String()),
			zap.String("catalog", snap.Catalog.Listing.Status.String()))
	})
	defer unsubscribe()

	ctx := context.Background()
	runDemo(ctx, st, *email, *password, *keyword)
}

func newSessionStore(cfg *config.Config) (session.Store, func(), error) {
	if cfg.Session.Backend == "redis" {
		rs, err := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Session.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	}
	return session.NewFileStore(cfg.Session.FilePath), func() {}, nil
}

// runDemo exercises the browse/login/cart flow against the configured
// backend and prints the resulting state.
func runDemo(ctx context.Context, st *store.Store, email, password, keyword string) {
	logger := util.GetLogger()

	if err := st.SearchProducts(ctx, store.SearchParams{Keyword: keyword, Page: 1}); err != nil {
		logger.Error("Catalog search failed", zap.Error(err))
		return
	}

	snap := st.Snapshot()
	fmt.Printf("Catalog: %d products (page %d/%d)\n",
		snap.Catalog.TotalProducts, snap.Catalog.CurrentPage, snap.Catalog.TotalPages)
	for _, p := range snap.Catalog.Products {
		fmt.Printf("  %-12s %-30s $%s (stock %d)\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
	}

	if email == "" || password == "" {
		return
	}

	if err := st.Login(ctx, models.LoginRequest{Email: email, Password: password}); err != nil {
		logger.Error("Login failed", zap.Error(err))
		return
	}

	if err := st.FetchCart(ctx); err != nil {
		logger.Error("Cart fetch failed", zap.Error(err))
		return
	}

	snap = st.Snapshot()
	fmt.Printf("Signed in as %s (%s)\n", snap.Auth.Session.Name, snap.Auth.Session.Role)
	fmt.Printf("Cart: %d items, total $%s\n",
		snap.Cart.ItemCount(), snap.Cart.TotalPrice().StringFixed(2))
}
