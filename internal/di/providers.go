package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"EventWeights/internal/domain/models"
	"EventWeights/internal/domain/repository"
	"EventWeights/internal/handler/api"
	internalrepo "EventWeights/internal/repository"
	icache "EventWeights/internal/service/cache"
	"EventWeights/internal/service/trace"
	"EventWeights/internal/snapshot"
	"EventWeights/internal/usecase"
	pkgch "EventWeights/pkg/clickhouse"
	"EventWeights/pkg/config"
	xhttp "EventWeights/pkg/http"
	pkgkafka "EventWeights/pkg/kafka"
	applogger "EventWeights/pkg/logger"
	"EventWeights/pkg/metrics"
	"EventWeights/pkg/postgres"
	"EventWeights/pkg/server"
	"EventWeights/pkg/sqlite"

	"github.com/labstack/echo/v4"
)

// Version is stamped at build time.
var Version = "1.0.0"

// ProvideKafkaProducer creates the producer behind the log collector; nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.LogCollector.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the application logger and attaches the error collector.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: api.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.LogCollector.Interval,
			CountThreshold: cfg.LogCollector.Threshold,
			Topic:          cfg.LogCollector.Topic,
			Node:           cfg.Trace.Node,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSource opens the configured relational store.
func ProvideSource(cfg *config.Config, l *applogger.Logger) (repository.Source, error) {
	tables := internalrepo.Tables{
		Events:      cfg.Calendar.EventsTable,
		Occurrences: cfg.Calendar.OccurrencesTable,
	}
	st := cfg.Store
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch st.Driver {
	case "postgres":
		pool, err := postgres.Connect(ctx, postgres.Config{
			DSN:      st.DSN,
			Host:     st.Host,
			Port:     st.Port,
			Name:     st.Database,
			User:     st.User,
			Password: st.Password,
			SSLMode:  st.SSLMode,
			MaxConns: st.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return internalrepo.NewPGSource(pool, tables, l), nil
	case "sqlite":
		db, err := sqlite.Open(ctx, st.DSN)
		if err != nil {
			return nil, err
		}
		return internalrepo.NewSQLSource(db, "sqlite", tables, l), nil
	default:
		opts := []pkgch.ClientOption{
			pkgch.WithDSN(st.DSN),
			pkgch.WithHost(st.Host),
			pkgch.WithDatabase(st.Database),
			pkgch.WithCredentials(st.User, st.Password),
			pkgch.WithMaxConnections(st.MaxOpenConns, st.MaxIdleConns),
			pkgch.WithTimeouts(st.DialTimeout, st.ReadTimeout),
			pkgch.WithMaxExecutionTime(st.MaxExecTime),
		}
		if st.Port > 0 {
			opts = append(opts, pkgch.WithPort(st.Port))
		}
		client, err := pkgch.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		return internalrepo.NewSQLSource(client.DB(), "clickhouse", tables, l), nil
	}
}

// ProvideInstruments builds the instrument registry from config.
func ProvideInstruments(cfg *config.Config) *repository.Instruments {
	list := make([]models.Instrument, 0, len(cfg.Instruments))
	for _, in := range cfg.Instruments {
		list = append(list, models.Instrument{ID: in.ID, Name: in.Name, Table: in.Table, Scale: in.Scale})
	}
	return repository.NewInstruments(list)
}

// ProvideHolder creates the empty snapshot holder.
func ProvideHolder() *snapshot.Holder {
	return snapshot.NewHolder()
}

// ProvideTraceReporter creates the error trace reporter.
func ProvideTraceReporter(cfg *config.Config, l *applogger.Logger) *trace.Reporter {
	return trace.NewReporter(trace.Config{
		Enabled: cfg.Trace.Enabled,
		URL:     cfg.Trace.URL,
		Node:    cfg.Trace.Node,
		Email:   cfg.Trace.Email,
	}, xhttp.NewClient(xhttp.WithTimeout(cfg.Trace.Timeout)), l)
}

// ProvideReloader creates the snapshot rebuild scheduler.
func ProvideReloader(
	src repository.Source,
	instruments *repository.Instruments,
	holder *snapshot.Holder,
	cfg *config.Config,
	m repository.Metrics,
	reporter *trace.Reporter,
	l *applogger.Logger,
) *usecase.Reloader {
	return usecase.NewReloader(src, instruments.All(), holder, usecase.ReloaderConfig{
		Interval: cfg.Reload.Interval,
		Timeout:  cfg.Reload.Timeout,
	}, m, reporter, l)
}

// ProvideWeightCalculator creates the weight vector use case.
func ProvideWeightCalculator(
	holder *snapshot.Holder,
	instruments *repository.Instruments,
	cfg *config.Config,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.WeightCalculator {
	return usecase.NewWeightCalculator(holder, instruments, cfg.Features.MaxHistory, m, l)
}

// ProvideResponseCache selects the /values cache backend; nil when caching is off.
func ProvideResponseCache(cfg *config.Config) icache.BytesCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	}
	return icache.NewTTLCache(0)
}

// ProvideWeightsHandler creates the HTTP handler.
func ProvideWeightsHandler(
	l *applogger.Logger,
	calc *usecase.WeightCalculator,
	cache icache.BytesCache,
	src repository.Source,
	cfg *config.Config,
) *api.WeightsEchoHandler {
	h := api.NewWeightsEchoHandler(l, calc, Version)
	if cache != nil {
		h.SetCache(cache, cfg.Cache.TTL)
	}
	h.SetHealth(src.Health)
	return h
}

// ProvideHTTPServer creates the Echo server; recovered panics go to the trace collector.
func ProvideHTTPServer(cfg *config.Config, h *api.WeightsEchoHandler, l *applogger.Logger, reporter *trace.Reporter) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithCORS(cfg.Server.CORSOrigins...),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowRequest),
		xhttp.WithLogger(l),
		xhttp.WithPanicHook(func(c echo.Context, err error, stack []byte) {
			reporter.ReportStack(context.WithoutCancel(c.Request().Context()), c.Path(), err, stack)
		}),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	reloader *usecase.Reloader,
	src repository.Source,
	srv *xhttp.Server,
	producer *pkgkafka.Producer,
	cache icache.BytesCache,
) *server.App {
	var closers []io.Closer
	if c, ok := cache.(io.Closer); ok {
		closers = append(closers, c)
	}
	if producer != nil {
		closers = append(closers, producer)
	}
	return server.New(cfg, l, reloader, src, srv, closers...)
}
