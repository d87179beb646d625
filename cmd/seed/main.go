package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tapzar-billing/internal/config"
	pg "tapzar-billing/internal/infra/db/postgres"
	"tapzar-billing/internal/infra/logging"
	"tapzar-billing/internal/infra/payment"
	"tapzar-billing/internal/usecase"
)

// Seeds the schema, a demo user and a pending payment for local development.
// The payment can then be finalized through /api/v1/payments/simulate.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, pg.Schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	userID := uuid.NewString()
	_, err = pool.Exec(ctx, `
INSERT INTO users (id, username, email, email_verified, registered_at)
VALUES ($1, 'demo', 'demo@example.com', TRUE, NOW())
ON CONFLICT (id) DO NOTHING;`, userID)
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	paymentRepo := pg.NewPaymentRepo(pool)
	paymentUC := usecase.NewPaymentUseCase(paymentRepo, payment.NoopGateway{}, nil, cfg.Gateway.Currency, logger)

	p, payURL, err := paymentUC.Initiate(ctx, userID, "popular", "")
	if err != nil {
		log.Fatalf("seed payment: %v", err)
	}

	fmt.Printf("demo user:     %s\n", userID)
	fmt.Printf("payment id:    %s\n", *p.GatewayPaymentID)
	fmt.Printf("redirect url:  %s\n", payURL)
	fmt.Println("finalize with POST /api/v1/payments/simulate")
}
