package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/sahakari/ledger-engine/internal/config"
	"github.com/sahakari/ledger-engine/internal/handler"
	"github.com/sahakari/ledger-engine/internal/repository"
	"github.com/sahakari/ledger-engine/internal/service"
	"github.com/sahakari/ledger-engine/pkg/response"
)

func main() {
	// Load .env for local development before viper reads the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	maturityRepo := repository.NewMaturityRepository(db)

	// Initialize services
	memberService := service.NewMemberService(memberRepo, ledgerRepo, loanRepo)
	ledgerService := service.NewLedgerService(memberRepo, ledgerRepo, loanRepo, redisClient, cfg)
	loanService := service.NewLoanService(loanRepo, ledgerRepo, memberRepo, redisClient, cfg)
	maturityService := service.NewMaturityService(maturityRepo, memberRepo, cfg)
	reportService := service.NewReportService(memberRepo, ledgerRepo, loanRepo, maturityRepo, redisClient, cfg)

	// Initialize handlers
	memberHandler := handler.NewMemberHandler(memberService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService, reportService)
	loanHandler := handler.NewLoanHandler(loanService)
	maturityHandler := handler.NewMaturityHandler(maturityService)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout())

	router := setupRoutes(memberHandler, ledgerHandler, loanHandler, maturityHandler, healthHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.GetReadTimeout(),
		WriteTimeout: cfg.Server.GetWriteTimeout(),
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.GetConnMaxLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	memberHandler *handler.MemberHandler,
	ledgerHandler *handler.LedgerHandler,
	loanHandler *handler.LoanHandler,
	maturityHandler *handler.MaturityHandler,
	healthHandler *handler.HealthHandler,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/members", memberHandler.Create).Methods("POST")
	api.HandleFunc("/members", memberHandler.List).Methods("GET")
	api.HandleFunc("/members/{memberId}", memberHandler.Get).Methods("GET")
	api.HandleFunc("/members/{memberId}", memberHandler.Delete).Methods("DELETE")

	api.HandleFunc("/members/{memberId}/ledger", ledgerHandler.CreateEntry).Methods("POST")
	api.HandleFunc("/members/{memberId}/ledger", ledgerHandler.ListEntries).Methods("GET")
	api.HandleFunc("/members/{memberId}/summary", ledgerHandler.MemberSummary).Methods("GET")
	api.HandleFunc("/ledger/{entryId}", ledgerHandler.UpdateEntry).Methods("PUT")
	api.HandleFunc("/ledger/{entryId}", ledgerHandler.DeleteEntry).Methods("DELETE")

	api.HandleFunc("/loans", loanHandler.CreateRequest).Methods("POST")
	api.HandleFunc("/loans/{loanId}/approve", loanHandler.Approve).Methods("POST")
	api.HandleFunc("/loans/{loanId}/reject", loanHandler.Reject).Methods("POST")
	api.HandleFunc("/loans/{loanId}/payment", loanHandler.RecordPayment).Methods("POST")
	api.HandleFunc("/loans/{loanId}", loanHandler.Delete).Methods("DELETE")
	api.HandleFunc("/members/{memberId}/loans", loanHandler.ListByMember).Methods("GET")

	api.HandleFunc("/maturities", maturityHandler.Create).Methods("POST")
	api.HandleFunc("/maturities/{recordId}", maturityHandler.Get).Methods("GET")
	api.HandleFunc("/members/{memberId}/maturities", maturityHandler.ListByMember).Methods("GET")
	api.HandleFunc("/maturities/{recordId}/status", maturityHandler.SetStatus).Methods("PATCH")
	api.HandleFunc("/maturities/{recordId}/override", maturityHandler.SetOverride).Methods("PATCH")
	api.HandleFunc("/maturities/{recordId}/override", maturityHandler.ClearOverride).Methods("DELETE")

	return router
}
