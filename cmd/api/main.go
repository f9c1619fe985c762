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
	"time"

	"instant-checkout/internal/config"
	"instant-checkout/internal/db"
	"instant-checkout/internal/httpserver"
	"instant-checkout/internal/metrics"
	"instant-checkout/internal/notify"
	cartrepo "instant-checkout/internal/repository/cart"
	customerrepo "instant-checkout/internal/repository/customer"
	orderrepo "instant-checkout/internal/repository/order"
	paymentrepo "instant-checkout/internal/repository/payment"
	productrepo "instant-checkout/internal/repository/product"
	storerepo "instant-checkout/internal/repository/store"
	tokenrepo "instant-checkout/internal/repository/token"
	anonymoussvc "instant-checkout/internal/service/anonymous"
	cartsvc "instant-checkout/internal/service/cart"
	"instant-checkout/internal/service/checkout"
	customersvc "instant-checkout/internal/service/customer"
	ordersvc "instant-checkout/internal/service/order"
	paymentsvc "instant-checkout/internal/service/payment"
	productsvc "instant-checkout/internal/service/product"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	dbpool, err := db.ConnectWith(ctx, cfg.DBConnString, db.Options{Attempts: cfg.DBConnectAttempts, Logger: logger})
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	readyChecks := map[string]httpserver.ReadyCheck{}
	notifier, closeNotifier := buildNotifier(cfg, logger, readyChecks)
	defer closeNotifier()

	storeRepo := storerepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	go purgeExpiredTokens(ctx, tokenRepo, time.Hour, logger)

	customerService := customersvc.New(customerRepo, tokenRepo,
		customersvc.WithAccessTTL(cfg.AccessTokenTTL),
		customersvc.WithLogger(logger),
	)
	paymentCatalog := paymentsvc.New(paymentrepo.NewPostgres(dbpool), logger)
	orderPlacer := ordersvc.New(orderRepo, notifier, logger)
	checkoutService := checkout.NewService(checkout.Deps{
		Carts:     cartRepo,
		Customers: customerService,
		Payments:  paymentCatalog,
		Orders:    orderPlacer,
		OrderIDs:  orderRepo,
		Metrics:   metrics.NewCheckout(registry),
		Logger:    logger,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		StoreRepo:      storeRepo,
		ProductSvc:     productsvc.New(productRepo),
		CartSvc:        cartsvc.New(cartRepo),
		CustomerSvc:    customerService,
		AnonymousSvc:   anonymoussvc.New(tokenRepo),
		CheckoutSvc:    checkoutService,
		PaymentSvc:     paymentCatalog,
		OrderSvc:       orderPlacer,
		HTTPMetrics:    metrics.NewHTTP(registry),
		MetricsHandler: metrics.Handler(registry),
		TriggerToken:   cfg.TriggerToken,
		ReadyChecks:    readyChecks,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	stopJanitor()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// buildNotifier publishes order events to Kafka when brokers are configured
// and only logs them otherwise. An open breaker marks the instance unready.
func buildNotifier(cfg config.Config, logger *log.Logger, checks map[string]httpserver.ReadyCheck) (notify.Notifier, func()) {
	brokers := notify.ParseBrokers(cfg.KafkaBrokers)
	if len(brokers) == 0 {
		logger.Printf("no kafka brokers configured, order events are logged only")
		return notify.NewLog(logger), func() {}
	}
	k := notify.NewKafka(notify.NewWriter(brokers, cfg.OrderEventsTopic), notify.KafkaOptions{
		BreakerTimeout: cfg.NotifyBreakerTimeout,
		Logger:         logger,
	})
	checks["order-events"] = func(context.Context) error {
		if state := k.State(); state == "open" {
			return fmt.Errorf("publisher circuit %s", state)
		}
		return nil
	}
	logger.Printf("publishing order events to topic=%s brokers=%v", cfg.OrderEventsTopic, brokers)
	return k, func() {
		if err := k.Close(); err != nil {
			logger.Printf("close kafka writer: %v", err)
		}
	}
}

// purgeExpiredTokens deletes expired bearer tokens every interval until ctx ends.
func purgeExpiredTokens(ctx context.Context, repo tokenrepo.Repository, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.DeleteExpired(ctx, now)
			if err != nil {
				logger.Printf("token purge: err=%v", err)
				continue
			}
			if n > 0 {
				logger.Printf("token purge: deleted=%d", n)
			}
		}
	}
}
