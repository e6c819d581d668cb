package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"FlowLab/internal/calc/calibration"
	"FlowLab/internal/calc/compare"
	"FlowLab/internal/calc/flowtest"
	"FlowLab/internal/calc/mainscreen"
	"FlowLab/internal/importer"
	"FlowLab/internal/middleware"
	"FlowLab/internal/report"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cal *calibration.Registry) {
	limiter := middleware.NewIPRateLimiter(1, 3)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	mainH := &mainscreen.Handler{Cal: cal}
	flowH := &flowtest.Handler{Cal: cal}
	compareH := &compare.Handler{Cal: cal}
	reportH := &report.Handler{Cal: cal}
	importH := &importer.Handler{}

	api.HandleFunc("/tools/main/si", mainH.CalcSI).Methods("POST")
	api.HandleFunc("/tools/main/us", mainH.CalcUS).Methods("POST")
	api.HandleFunc("/tools/port/solve", mainH.PortSolve).Methods("POST")
	api.HandleFunc("/tools/flowtest/si", flowH.CalcSI).Methods("POST")
	api.HandleFunc("/tools/flowtest/us", flowH.CalcUS).Methods("POST")
	api.HandleFunc("/tools/compare", compareH.Calc).Methods("POST")
	api.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")
	api.HandleFunc("/import/xlsx", importH.XLSX).Methods("POST")
	api.HandleFunc("/import/iop", importH.IOP).Methods("POST")

	api.HandleFunc("/calibration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Profile   calibration.Profile    `json:"profile"`
			Constants []calibration.Constant `json:"constants"`
			Overrides []calibration.Override `json:"overrides"`
		}{cal.Profile(), cal.Constants(), cal.AuditLog()})
	}).Methods("GET")
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file, using environment as is")
	}

	profile := calibration.Profile(os.Getenv("FLOWLAB_PROFILE"))
	if profile == "" {
		profile = calibration.ProfileReport
	}
	cal, err := calibration.New(profile)
	if err != nil {
		log.WithError(err).Fatal("calibration registry init failed")
	}
	if err := cal.Verify(); err != nil {
		log.WithError(err).Fatal("calibration drift detected at startup")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	router := mux.NewRouter()
	HandleList(router, cal)
	handler := CORS(router)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithField("addr", server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error")
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, closing active connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("Server shutdown failed")
	}
	log.Info("Server stopped")

	wg.Wait()
}
