// Command seed fills the configured backend with demo data: one account,
// a few properties and tenants, active tenancies and a ledger with paid,
// pending and overdue obligations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"rentledger/internal/auth"
	"rentledger/internal/backend"
	"rentledger/internal/config"
	"rentledger/internal/core"
	applog "rentledger/internal/log"
	"rentledger/internal/services"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "demo@rentledger.local", "demo account email")
	password := flag.String("password", "demo-password", "demo account password")
	properties := flag.Int("properties", 3, "number of properties")
	months := flag.Int("months", 6, "months of ledger history per tenancy")
	seed := flag.Int64("seed", 0, "random seed (0 = time-based)")
	flag.Parse()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: "seed",
	})
	applog.SetDefault(logger)

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := backend.NewFactory(logger.Logger).Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	authenticator := auth.NewPasswordAuthenticator(store, func() string { return uuid.New().String() })
	ledger := services.NewLedgerService(store, nil)

	owner, err := authenticator.Register(ctx, *email, gofakeit.Name(), *password)
	if err != nil {
		logger.Error("Failed to create demo account", "error", err, "email", *email)
		os.Exit(1)
	}
	logger.Info("Created demo account", "email", owner.Email, "user_id", owner.ID)

	now := time.Now()
	for i := 0; i < *properties; i++ {
		p := core.Property{
			ID:      uuid.New().String(),
			OwnerID: owner.ID,
			Name:    gofakeit.Street(),
			Address: gofakeit.Address().Address,
			Units:   gofakeit.Number(1, 4),
		}
		if err := store.CreateProperty(ctx, &p); err != nil {
			logger.Error("Failed to create property", "error", err)
			os.Exit(1)
		}

		tenant := core.Tenant{
			ID:      uuid.New().String(),
			OwnerID: owner.ID,
			Name:    gofakeit.Name(),
			Email:   gofakeit.Email(),
			Phone:   gofakeit.Phone(),
		}
		if err := store.CreateTenant(ctx, &tenant); err != nil {
			logger.Error("Failed to create tenant", "error", err)
			os.Exit(1)
		}

		start := core.DateOf(now.AddDate(0, -*months, 0))
		tenancy, err := ledger.CreateTenancy(ctx, core.Tenancy{
			OwnerID:    owner.ID,
			PropertyID: p.ID,
			TenantID:   tenant.ID,
			RentAmount: core.Money{Cents: int64(gofakeit.Number(500, 1500)) * 100},
			Frequency:  core.Monthly,
			StartDate:  start,
		})
		if err != nil {
			logger.Error("Failed to create tenancy", "error", err)
			os.Exit(1)
		}

		seedHistory(ctx, logger, ledger, tenancy, *months, now)
	}

	logger.Info("Seed complete",
		"backend", cfg.DataBackend,
		"properties", *properties,
		"months", *months)
	fmt.Printf("Demo account ready: %s / %s\n", *email, *password)
}

// seedHistory bills past months beyond the first rent and settles most of
// them, leaving the occasional obligation unpaid so the dashboard has
// something overdue to show.
func seedHistory(ctx context.Context, logger *applog.Logger, ledger *services.LedgerService, t *core.Tenancy, months int, now time.Time) {
	for m := 1; m <= months; m++ {
		due := core.DateOf(t.StartDate.AddDate(0, m, 0))
		if now.Before(due.Time) {
			break
		}
		o, err := ledger.CreateObligation(ctx, core.Obligation{
			OwnerID:     t.OwnerID,
			TenancyID:   t.ID,
			Kind:        core.KindRent,
			Description: "Rent due " + due.String(),
			Amount:      t.RentAmount,
			DueDate:     due,
			Recurrence:  core.Recurrence{IsRecurring: true, Frequency: t.Frequency},
		})
		if err != nil {
			logger.Error("Failed to create rent obligation", "error", err)
			return
		}

		// Roughly one in five stays unpaid.
		if gofakeit.Number(1, 5) == 1 {
			continue
		}
		meta := core.PaymentMeta{
			PaidDate:  core.DateOf(due.AddDate(0, 0, gofakeit.Number(0, 6))),
			Method:    gofakeit.RandomString([]string{"bank_transfer", "cash", "card"}),
			Reference: gofakeit.UUID(),
		}
		if _, err := ledger.RecordPayment(ctx, t.OwnerID, o.ID, t.RentAmount, meta); err != nil {
			logger.Error("Failed to record seed payment", "error", err)
			return
		}
	}

	// One expense per tenancy keeps both kinds on the ledger.
	_, err := ledger.CreateObligation(ctx, core.Obligation{
		OwnerID:     t.OwnerID,
		TenancyID:   t.ID,
		Kind:        core.KindExpense,
		Description: gofakeit.Sentence(4),
		Amount:      core.Money{Cents: int64(gofakeit.Number(30, 400)) * 100},
		DueDate:     core.DateOf(now.AddDate(0, 0, gofakeit.Number(-30, 30))),
	})
	if err != nil {
		logger.Error("Failed to create seed expense", "error", err)
	}
}
