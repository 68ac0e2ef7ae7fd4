package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wayfarer/config"
	"wayfarer/internal/auth"
	"wayfarer/internal/bookings"
	"wayfarer/internal/db"
	"wayfarer/internal/health"
	"wayfarer/internal/logs"
	"wayfarer/internal/mailer"
	"wayfarer/internal/middleware"
	"wayfarer/internal/models"
	"wayfarer/internal/repo"
	"wayfarer/internal/reviews"
	"wayfarer/internal/tours"
	"wayfarer/internal/users"
	"wayfarer/internal/views"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Router     *mux.Router
	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	/* 1) Logs */
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	/* 2) DB */
	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	a.db = d

	if err := a.db.AutoMigrate(
		&models.User{},
		&models.Tour{},
		&models.TourStartDate{},
		&models.TourLocation{},
		&models.Review{},
		&models.Booking{},
	); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	/* 3) Stores + services */
	userStore := repo.NewUserStore(a.db)
	tourStore := repo.NewTourStore(a.db)
	reviewStore := repo.NewReviewStore(a.db)
	bookingStore := repo.NewBookingStore(a.db)

	codec := auth.NewCodec(a.cfg.JWT.Secret, a.cfg.JWT.ExpiresIn)
	guard := auth.NewGuard(userStore, codec)
	mail := mailer.New(a.cfg)
	authHandlers := auth.NewHandlers(a.cfg, userStore, codec, mail)

	tourHandler := tours.New(tourStore, a.cfg)
	userHandler := users.New(userStore, a.cfg)
	reviewHandler := reviews.New(reviewStore)
	bookingHandler := bookings.New(bookingStore, tourStore, a.cfg)
	viewHandler := views.NewHandler(tourStore, reviewStore, bookingStore)

	/* 4) Router + middleware */
	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)

	/* 5) Health */
	health.RegisterRoutesWithDB(a.Router, a.db) // /healthz, /readyz

	/* 6) JSON API, rate limited per client IP */
	api := a.Router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RateLimit(a.cfg.RateLimit.PerMinute))
	tours.RegisterRoutes(api, tourHandler, guard)
	users.RegisterRoutes(api, userHandler, authHandlers, guard)
	reviews.RegisterRoutes(api, reviewHandler, guard)
	bookings.RegisterRoutes(api, bookingHandler, guard)

	/* 7) Rendered pages + static assets */
	views.RegisterRoutes(a.Router, viewHandler, guard, bookingHandler.CheckoutRedirect)

	/* dump known routes on start */
	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigs
		logs.Logger.Infof("shutdown signal: %s", s)
		a.cancel()
	}()

	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}
	return nil
}
