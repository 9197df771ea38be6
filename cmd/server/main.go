package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	httpx "github.com/nis2meetu/paymongo-server/internal/http"
	"github.com/nis2meetu/paymongo-server/internal/mail"
	"github.com/nis2meetu/paymongo-server/internal/notifier"
	"github.com/nis2meetu/paymongo-server/internal/paymongo"
	"github.com/nis2meetu/paymongo-server/internal/repository"
	"github.com/nis2meetu/paymongo-server/internal/service"
	"github.com/nis2meetu/paymongo-server/pkg/config"
	"github.com/nis2meetu/paymongo-server/pkg/db"
	"github.com/nis2meetu/paymongo-server/pkg/mq"
	"github.com/nis2meetu/paymongo-server/pkg/obs"
)

func main() {
	_ = godotenv.Load(".env")

	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	shutdownTracer, err := obs.InitTracer("paymongo-server")
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
		shutdownTracer = func(context.Context) error { return nil }
	}

	gdb, err := db.Open(cfg.PGDSN)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}

	txRepo := repository.NewTransactionRepo(gdb)
	catalogRepo := repository.NewCatalogRepo(gdb)
	playerRepo := repository.NewPlayerRepo(gdb)
	notifRepo := repository.NewNotificationRepo(gdb)
	adminRepo := repository.NewAdminRepo(gdb)
	for _, m := range []func() error{
		txRepo.Migrate, catalogRepo.Migrate, playerRepo.Migrate,
		notifRepo.Migrate, adminRepo.Migrate,
	} {
		if err := m(); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	// fan-out is optional: without rabbit the webhook still reconciles,
	// players just get no push notifications
	var pub service.Publisher
	if cfg.RabbitURL != "" {
		p, err := mq.NewPublisher(cfg.RabbitURL, cfg.PaymentExchange)
		if err != nil {
			log.Fatal("mq publisher", zap.Error(err))
		}
		defer p.Close()
		pub = p
	}

	var mailer service.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	} else {
		mailer = mail.NewLog(log)
	}

	pmClient := paymongo.NewClient(cfg.PayMongoBaseURL, cfg.PayMongoSecretKey, cfg.CheckoutSuccess, cfg.CheckoutCancel)

	fulfiller := service.NewFulfillment(txRepo, catalogRepo, log)
	reconciler := service.NewReconciler(txRepo, fulfiller, pub, log)
	checkout := service.NewCheckout(pmClient, txRepo, log)
	admin := service.NewAdmin(adminRepo, mailer, cfg.AdminMail,
		time.Duration(cfg.CodeTTLMin)*time.Minute,
		time.Duration(cfg.JWTExpireMin)*time.Minute, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RabbitURL != "" {
		cons, err := mq.NewConsumer(cfg.RabbitURL, cfg.PaymentExchange, cfg.NotifyQueue,
			[]string{"payment.paid", "payment.failed", "payment.refunded"})
		if err != nil {
			log.Fatal("mq consumer", zap.Error(err))
		}
		defer cons.Close()
		worker := notifier.NewWorker(cons, notifRepo, log)
		go func() {
			if err := worker.Run(ctx); err != nil {
				log.Error("notifier stopped", zap.Error(err))
			}
		}()
	}

	router := httpx.NewRouter(httpx.Handlers{
		Webhook:      httpx.NewWebhookHandler(reconciler, log),
		Checkout:     httpx.NewCheckoutHandler(checkout, log),
		Catalog:      httpx.NewCatalogHandler(catalogRepo),
		Player:       httpx.NewPlayerHandler(playerRepo),
		Notification: httpx.NewNotificationHandler(notifRepo),
		Admin:        httpx.NewAdminHandler(admin, log),
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown", zap.Error(err))
	}
}
