package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // BUSINESS_TIMEZONE must resolve in minimal containers

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/spot-reservation/internal/authz"
	"github.com/iliyamo/spot-reservation/internal/config"
	"github.com/iliyamo/spot-reservation/internal/database"
	"github.com/iliyamo/spot-reservation/internal/handler"
	"github.com/iliyamo/spot-reservation/internal/metrics"
	"github.com/iliyamo/spot-reservation/internal/middleware"
	"github.com/iliyamo/spot-reservation/internal/queue"
	"github.com/iliyamo/spot-reservation/internal/repository"
	"github.com/iliyamo/spot-reservation/internal/repository/memory"
	"github.com/iliyamo/spot-reservation/internal/reservation"
	"github.com/iliyamo/spot-reservation/internal/router"
	"github.com/iliyamo/spot-reservation/internal/service"
)

// stores groups the repositories selected by STORAGE_DRIVER.
type stores struct {
	reservations repository.ReservationStore
	pots         repository.PotStore
	users        repository.UserStore
	db           *sql.DB // nil for in-memory storage
}

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("could not load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	setupLogging(cfg)
	logger := log.WithField("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("storage init failed")
	}
	if st.db != nil {
		defer st.db.Close()
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		logger.WithError(err).Fatal("event publisher init failed")
	}
	defer publisher.Close()

	if cfg.EventsConsumerEnabled && cfg.EventsDriver == config.EventsRabbitMQ {
		go func() {
			if err := queue.StartReservationConsumer(ctx, cfg.RabbitMQURL, cfg.EventLogPath); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("reservation consumer stopped")
			}
		}()
	}

	loc, _ := cfg.Location() // validated by config.Load
	m := metrics.NewReservationMetrics()
	policy := authz.OwnerPolicy{}
	validator := reservation.NewValidator(reservation.WithLocation(loc))
	reservations := service.NewReservations(st.reservations, validator, policy,
		service.WithPublisher(publisher), service.WithMetrics(m))
	pots := service.NewPots(st.pots, policy, m)

	rateCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.WithError(err).Fatal("invalid rate limit configuration")
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		logger.WithError(err).Fatal("invalid cache configuration")
	}
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		logger.WithError(err).Fatal("invalid redis configuration")
	}
	rdb := config.NewRedisClient(redisCfg)
	if rdb == nil {
		logger.WithField("addr", redisCfg.Address()).Warn("redis unavailable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	var pingers []handler.Pinger
	if st.db != nil {
		pingers = append(pingers, st.db)
	}
	router.RegisterRoutes(e, prometheus.DefaultGatherer, pingers...)
	router.RegisterAuth(e, handler.NewAuthHandler(handler.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL(),
		BcryptCost: cfg.BcryptCost,
	}, st.users), cfg.JWTSecret)
	router.RegisterReservations(e, handler.NewReservationHandler(reservations), cfg.JWTSecret,
		middleware.NewTokenBucket(rateCfg, rdb), middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterPots(e, handler.NewPotHandler(pots), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(log.Fields{
			"addr":    addr,
			"env":     cfg.Env,
			"storage": cfg.StorageDriver,
			"events":  cfg.EventsDriver,
		}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func setupLogging(cfg config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown LOG_LEVEL; using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// openStores connects to the configured database, applies the schema and
// builds the repositories.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	var (
		dialect database.Dialect
		dsn     string
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return stores{
			reservations: memory.NewReservationRepository(),
			pots:         memory.NewPotRepository(),
			users:        memory.NewUserRepository(),
		}, nil
	case config.StorageMySQL:
		dialect = database.MySQL
		dsn = database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	default:
		dialect = database.Postgres
		dsn = cfg.DatabaseURL
	}

	db, err := database.Open(ctx, dialect, dsn)
	if err != nil {
		return stores{}, err
	}
	if err := database.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	return stores{
		reservations: repository.NewReservationRepo(db, dialect),
		pots:         repository.NewPotRepo(db, dialect),
		users:        repository.NewUserRepo(db, dialect),
		db:           db,
	}, nil
}

// newPublisher selects the broker for reservation.created events.
func newPublisher(cfg config.Config) (queue.Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsRabbitMQ:
		return queue.NewRabbitPublisher(cfg.RabbitMQURL)
	case config.EventsKafka:
		return queue.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return queue.NoopPublisher{}, nil
	}
}
