package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"cardwise/internal/config"
	"cardwise/internal/format"
	"cardwise/internal/logging"
	"cardwise/internal/matcher"
	"cardwise/internal/models"
	"cardwise/internal/parser"
	"cardwise/internal/repository"
	"cardwise/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultPort    = "8080"
	requestTimeout = 5 * time.Second
)

type offerAPI struct {
	finder *service.Finder
	logger *zap.Logger
}

func (a *offerAPI) respondOffers(w http.ResponseWriter, offers []models.Offer) {
	data, err := format.MarshalOffers(offers)
	if err != nil {
		a.logger.Error("failed to encode offers", zap.Error(err))
		http.Error(w, "could not encode offers", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data) //nolint:errcheck // client went away, nothing to do
}

func (a *offerAPI) respondErr(w http.ResponseWriter, err error) {
	a.logger.Error("request failed", zap.Error(err))
	if errors.Is(err, models.ErrOfferProcessing) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, "could not retrieve offers", http.StatusInternalServerError)
}

// searchHandler serves GET /offers/search?shops=a&shops=b.
func (a *offerAPI) searchHandler(w http.ResponseWriter, r *http.Request) {
	shops := r.URL.Query()["shops"]
	if len(shops) == 0 {
		http.Error(w, "at least one shops query parameter is required", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	offers, err := a.finder.FuzzySearch(ctx, shops)
	if err != nil {
		a.respondErr(w, err)
		return
	}
	a.logger.Info("fuzzy search served", zap.Strings("queries", shops), zap.Int("matches", len(offers)))
	a.respondOffers(w, offers)
}

// listHandler serves GET /offers/ with limit/offset pagination.
func (a *offerAPI) listHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", service.DefaultPageLimit)
	offset := queryInt(r, "offset", 0)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	offers, err := a.finder.ListOffersPaginated(ctx, limit, offset)
	if err != nil {
		a.respondErr(w, err)
		return
	}
	a.respondOffers(w, offers)
}

// allHandler serves GET /offers/all.
func (a *offerAPI) allHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	offers, err := a.finder.ListOffers(ctx)
	if err != nil {
		a.respondErr(w, err)
		return
	}
	a.respondOffers(w, offers)
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func initDatabase(ctx context.Context, dsn string) (repository.OfferRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to the database: %w", err)
	}
	repo := repository.NewPostgresOfferRepository(db)
	if err := repo.Init(ctx); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return repo, nil
}

func main() {
	logger, err := logging.New(1, os.Getenv("CARDWISE_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync() //nolint:errcheck

	conf, err := config.Init(logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if conf.DBConn == "" {
		logger.Fatal("no database configured, set CARDWISE_DB_HOST/DB_USER/DB_NAME")
	}

	ctx := context.Background()
	repo, err := initDatabase(ctx, conf.DBConn)
	if err != nil {
		logger.Fatal("database initialization failed", zap.Error(err))
	}

	parsers := parser.Discover(logger)
	ingestor := service.NewIngestor(parsers, repository.NewDirSource(conf.HTMLDir), logger)
	finder := service.NewFinder(repo, ingestor, matcher.New(conf.MatchThreshold), logger)

	// amortize the first request
	if err := finder.PrecomputeOffers(ctx); err != nil {
		logger.Fatal("failed to precompute offers", zap.Error(err))
	}
	offers, err := finder.ListOffers(ctx)
	if err != nil {
		logger.Fatal("failed to count offers", zap.Error(err))
	}
	logger.Info("serving offers", zap.Int("count", len(offers)))

	api := &offerAPI{finder: finder, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Get("/healthz", healthzHandler)
	r.Route("/offers", func(r chi.Router) {
		r.Get("/", api.listHandler)
		r.Get("/all", api.allHandler)
		r.Get("/search", api.searchHandler)
	})

	port := os.Getenv("CARDWISE_PORT")
	if port == "" {
		port = defaultPort
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
