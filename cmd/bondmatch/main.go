// Command bondmatch runs the bond marketplace matching engine and trade
// ledger as an HTTP-fronted process: Redis-backed storage, an optional
// MySQL-backed compliance gate, an optional Kafka trade-event publisher,
// and a thin gin router over the service facade.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/liquidbond/matchingledger/internal/bonds/compliance"
	"github.com/liquidbond/matchingledger/internal/bonds/compliance/kyc"
	"github.com/liquidbond/matchingledger/internal/bonds/domain"
	"github.com/liquidbond/matchingledger/internal/bonds/events"
	"github.com/liquidbond/matchingledger/internal/bonds/ledger"
	"github.com/liquidbond/matchingledger/internal/bonds/matching"
	"github.com/liquidbond/matchingledger/internal/bonds/service"
	"github.com/liquidbond/matchingledger/internal/bonds/storage"
	breakerstore "github.com/liquidbond/matchingledger/internal/bonds/storage/breaker"
	redisstore "github.com/liquidbond/matchingledger/internal/bonds/storage/redis"
	"github.com/liquidbond/matchingledger/internal/platform/config"
	"github.com/liquidbond/matchingledger/internal/platform/logging"
)

func main() {
	configPath := flag.String("config", "configs/bondmatch/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger := logging.New(logging.Config{
		FilePath: "logs/bondmatch.log",
		Level:    slog.LevelInfo,
	})
	logger = logger.With(slog.String("service", cfg.Server.Name))

	redisClient := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var store storage.Store = redisstore.New(redisClient)
	store = breakerstore.New(cfg.Server.Name+"-store", store, 5)

	gate := buildGate(cfg, logger)
	publisher := buildPublisher(cfg, logger)

	l := ledger.New(store, logger)
	engine := matching.NewEngine(store, l, gate, matching.WithPublisher(publisher), matching.WithLogger(logger))
	svc := service.New(engine, l)

	router := newRouter(svc, logger)

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("listening", slog.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	if kp, ok := publisher.(*events.KafkaPublisher); ok {
		_ = kp.Close()
	}
}

func buildGate(cfg *config.Config, logger *slog.Logger) compliance.Gate {
	if cfg.MySQL.DSN == "" {
		return compliance.NewDefaultGate(logger)
	}
	db, err := gorm.Open(mysql.Open(cfg.MySQL.DSN), &gorm.Config{})
	if err != nil {
		logger.Warn("mysql unavailable, falling back to default compliance gate", slog.Any("error", err))
		return compliance.NewDefaultGate(logger)
	}
	return kyc.New(db, logger)
}

func buildPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NoopPublisher{}
	}
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
}

func newRouter(svc *service.Service, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/orders", func(c *gin.Context) {
		var req service.SubmitOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		result, err := svc.SubmitOrder(c.Request.Context(), req)
		if err != nil {
			writeServiceError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	r.GET("/trades", func(c *gin.Context) {
		req := service.QueryTradesRequest{
			UserID:     c.Query("userId"),
			Instrument: c.Query("instrument"),
			StartDay:   c.Query("startDay"),
			EndDay:     c.Query("endDay"),
		}
		if v, ok, err := parseFloatQuery(c, "minAmount"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		} else if ok {
			req.MinAmount = &v
		}
		if v, ok, err := parseFloatQuery(c, "maxAmount"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		} else if ok {
			req.MaxAmount = &v
		}
		trades, err := svc.QueryTrades(c.Request.Context(), req)
		if err != nil {
			writeServiceError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, trades)
	})

	return r
}

// parseFloatQuery parses the query parameter name as a float64, reporting
// ok=false when the parameter is absent and an error when it is present
// but malformed.
func parseFloatQuery(c *gin.Context, name string) (value float64, ok bool, err error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func writeServiceError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrComplianceRejected):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
