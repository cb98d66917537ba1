package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/tenantvolt/backend/clock"
	"github.com/tenantvolt/backend/config"
	"github.com/tenantvolt/backend/handlers"
	"github.com/tenantvolt/backend/services"
	"github.com/tenantvolt/backend/store"
)

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC RECOVERED: %v", err)
				log.Printf("Stack trace: %s", debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s - completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func main() {
	log.Println("Starting TenantVolt Electricity API...")
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	devMode := flag.Bool("dev", false, "run against an in-memory store instead of Firebase")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var st store.Store
	if *devMode {
		log.Println("WARNING: running in dev mode with an in-memory store, data is not persisted")
		st = store.NewMemory()
	} else {
		if err := cfg.ValidateFirebase(); err != nil {
			log.Fatalf("Invalid Firebase configuration: %v", err)
		}
		firebaseStore, err := store.NewFirebase(context.Background(), cfg.FirebaseDatabaseURL, cfg.FirebaseCredentials)
		if err != nil {
			log.Fatalf("Failed to connect to Firebase: %v", err)
		}
		st = firebaseStore
	}

	clk := clock.NewAdjustable(clock.NewSystem(cfg.BillingTimezone))

	usageService := services.NewUsageService(st)
	billingService := services.NewBillingService(st, clk)
	connectionService := services.NewConnectionService(st, clk)
	notifier := services.NewNotifier(cfg.NotifyURL)
	monthlyBiller := services.NewMonthlyBiller(st, clk, billingService, notifier)
	scheduler := services.NewBillScheduler(monthlyBiller, clk, cfg.SchedulerInterval)

	go scheduler.Start()

	electricityHandler := handlers.NewElectricityHandler(usageService, connectionService)
	billHandler := handlers.NewBillHandler(billingService, services.NewStatementGenerator())
	debugHandler := handlers.NewDebugHandler(clk)

	r := mux.NewRouter()

	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.HandleFunc("/", rootHandler).Methods("GET")
	r.HandleFunc("/api/health", healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/electricity/minutely/{product_id}/{date}/{hour}", electricityHandler.Minutely).Methods("GET")
	api.HandleFunc("/electricity/hourly/{product_id}/{date}", electricityHandler.Hourly).Methods("GET")
	api.HandleFunc("/electricity/daily/{product_id}/{year_month}", electricityHandler.Daily).Methods("GET")
	api.HandleFunc("/electricity/monthly/{product_id}/{year}", electricityHandler.Monthly).Methods("GET")
	api.HandleFunc("/electricity/connection-status", electricityHandler.ConnectionStatuses).Methods("POST")
	api.HandleFunc("/electricity/connection-status/all", electricityHandler.AllConnectionStatuses).Methods("GET")
	api.HandleFunc("/electricity/update-connection-status", electricityHandler.UpdateConnectionStatus).Methods("POST")

	api.HandleFunc("/bill/generate", billHandler.Generate).Methods("POST")
	api.HandleFunc("/bill/payment-history/{username}", billHandler.PaymentHistory).Methods("GET")
	api.HandleFunc("/bill/latest", billHandler.LatestBills).Methods("POST")
	api.HandleFunc("/bill/statement/{username}", billHandler.Statement).Methods("GET")

	api.HandleFunc("/debug/clock", debugHandler.SetClock).Methods("POST")
	api.HandleFunc("/debug/clock", debugHandler.ClearClock).Methods("DELETE")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	})

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      c.Handler(r),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  180 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("ERROR: server shutdown: %v", err)
	}
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Welcome to TenantVolt Electricity API",
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}
