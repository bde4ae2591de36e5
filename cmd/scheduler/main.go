package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/sahakari/ledger-engine/internal/config"
	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/repository"
	"github.com/sahakari/ledger-engine/internal/service"
)

func main() {
	log.Println("Starting ledger scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	memberRepo := repository.NewMemberRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	maturityRepo := repository.NewMaturityRepository(db)

	loanService := service.NewLoanService(loanRepo, ledgerRepo, memberRepo, redisClient, cfg)
	maturityService := service.NewMaturityService(maturityRepo, memberRepo, cfg)
	reportService := service.NewReportService(memberRepo, ledgerRepo, loanRepo, maturityRepo, redisClient, cfg)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone %q: %v", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))
	setupCronJobs(c, cfg, loanService, maturityService, reportService)

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(
	c *cron.Cron,
	cfg *config.Config,
	loanService *service.LoanService,
	maturityService *service.MaturityService,
	reportService *service.ReportService,
) {
	// Daily maturity sweep and summary cache refresh (runs at midnight)
	_, err := c.AddFunc("0 0 0 * * *", func() {
		runMaturitySweep(maturityService)
		refreshSummaries(reportService)
	})
	if err != nil {
		log.Printf("Error scheduling maturity sweep job: %v", err)
	}

	// Daily payment reminder scan (runs at 9 AM)
	_, err = c.AddFunc("0 0 9 * * *", func() {
		runPaymentReminders(loanService, cfg.Business.DueSoonDays)
	})
	if err != nil {
		log.Printf("Error scheduling payment reminder job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

func runMaturitySweep(maturityService *service.MaturityService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	views, err := maturityService.ListMaturingThrough(ctx, time.Now())
	if err != nil {
		log.Printf("Maturity sweep failed: %v", err)
		return
	}

	matured, overdue := 0, 0
	for _, view := range views {
		switch view.DerivedStatus {
		case domain.MaturityStatusMatured:
			matured++
			log.Printf("Scheme %q for member %s matures today (payout %s)",
				view.SchemeName, view.MemberID, view.MaturityAmount)
		case domain.MaturityStatusOverdue:
			overdue++
		}
	}

	log.Printf("Maturity sweep complete: %d matured today, %d overdue unclaimed", matured, overdue)
}

func refreshSummaries(reportService *service.ReportService) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := reportService.RefreshAll(ctx); err != nil {
		log.Printf("Summary cache refresh failed: %v", err)
		return
	}

	log.Println("Member summary cache refreshed")
}

func runPaymentReminders(loanService *service.LoanService, dueSoonDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	loans, err := loanService.ListDueWithin(ctx, dueSoonDays)
	if err != nil {
		log.Printf("Payment reminder scan failed: %v", err)
		return
	}

	for _, loan := range loans {
		log.Printf("Reminder: loan %s for member %s has %s due by %s",
			loan.ID, loan.MemberID, loan.RemainingBalance, loan.NextDueDate.Format("2006-01-02"))
	}

	log.Printf("Payment reminder scan complete: %d loans due within %d days", len(loans), dueSoonDays)
}
