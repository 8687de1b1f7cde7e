package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-adopt/auth"
	"github.com/diewo77/go-adopt/internal/config"
	"github.com/diewo77/go-adopt/internal/db"
	"github.com/diewo77/go-adopt/internal/logging"
	"github.com/diewo77/go-adopt/internal/observability"
	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/diewo77/go-adopt/internal/policy"
	"github.com/diewo77/go-adopt/internal/server"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed the admin user and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	logrus.SetLevel(log.GetLevel())
	logrus.SetFormatter(log.Formatter)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	dbConn, err := db.Connect(cfg.Database, log, cfg.App.Dev)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		log.Info("migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := db.SeedAdmin(dbConn, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			log.WithError(err).Fatal("seeding failed")
		}
		log.Info("seeding completed successfully")
		return
	}

	if cfg.App.Migrations {
		if err := migrate(cfg, dbConn); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		log.Info("migrations completed")
	}
	if err := db.SeedAdmin(dbConn, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.WithError(err).Fatal("seeding failed")
	}

	if cfg.Auth.SessionSecret != "" {
		auth.SetSecret(cfg.Auth.SessionSecret)
	} else {
		log.Warn("SESSION_SECRET not set, using the development secret")
	}
	runCtx, stop := context.WithCancel(context.Background())
	defer stop()

	users := services.NewUserService(dbConn)
	auth.SetUserVerifier(users.Exists)

	var metrics *observability.Metrics
	if cfg.App.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = observability.NewMetrics(reg)
	}

	engine, err := permissions.NewResolver(log)
	if err != nil {
		log.WithError(err).Fatal("invalid permission policy")
	}
	subjects := policy.NewCachedResolver(
		policy.NewDBSubjectResolver(dbConn),
		cfg.Auth.SubjectCacheSize,
		cfg.Auth.SubjectCacheTTL,
		metrics,
	)
	var invalidator policy.Invalidator = subjects
	if cfg.Auth.RedisURL != "" {
		rdb, err := policy.DialRedis(context.Background(), cfg.Auth.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("redis unavailable")
		}
		defer rdb.Close()
		bus := policy.NewRedisInvalidator(rdb, cfg.Auth.InvalidationChannel, subjects, log)
		go func() {
			if err := bus.Run(runCtx); err != nil {
				log.WithError(err).Error("subject invalidation listener stopped")
			}
		}()
		invalidator = bus
	}

	gateOpts := []policy.Option{policy.WithLogger(log)}
	if metrics != nil {
		gateOpts = append(gateOpts, policy.WithDecisionHook(metrics.ObserveDecision))
	}
	authGate := policy.NewAuthGate(subjects, engine, gateOpts...)

	app := server.NewApp(server.Deps{
		DB:          dbConn,
		Logger:      log,
		Gate:        authGate,
		Subjects:    invalidator,
		Metrics:     metrics,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "dev": cfg.App.Dev}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("error during shutdown")
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped gracefully")
}

// migrate applies the versioned SQL files on Postgres and AutoMigrate on
// SQLite, then checks the schema.
func migrate(cfg *config.Config, conn *gorm.DB) error {
	if cfg.Database.Driver == "postgres" {
		if err := db.MigrateSQL(cfg.Database.URL()); err != nil {
			return err
		}
		return db.CheckSchema(conn)
	}
	return db.Migrate(conn)
}
