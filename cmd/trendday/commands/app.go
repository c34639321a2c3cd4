package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/trendday/internal/contracts"
	"github.com/wonny/trendday/internal/execution"
	"github.com/wonny/trendday/internal/marketdata"
	"github.com/wonny/trendday/internal/strategyconfig"
	"github.com/wonny/trendday/internal/trendday"
	"github.com/wonny/trendday/pkg/config"
	"github.com/wonny/trendday/pkg/database"
	"github.com/wonny/trendday/pkg/logger"
	"github.com/wonny/trendday/pkg/redis"
)

// app holds the wired dependencies shared by commands
// ⭐ SSOT: 커맨드 의존성 조립은 여기서만
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	loc    *time.Location
	db     *database.DB  // --bars 사용 시 nil
	redis  *redis.Client // --bars 사용 시 nil

	strategyConfig *strategyconfig.Config
	strategyYAML   []byte
	params         trendday.Params
	strategy       *trendday.Strategy

	loader marketdata.Source
}

// newApp loads config, the strategy YAML and the price source.
// --bars selects the JSON file loader and skips PostgreSQL and Redis.
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load strategy YAML
	path := strategyFile
	if path == "" {
		path = cfg.Strategy.ConfigPath
	}
	strategyCfg, yamlData, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy config: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategyCfg) {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Warn("Strategy config warning")
	}

	params, err := trendday.FromConfig(strategyCfg)
	if err != nil {
		return nil, fmt.Errorf("strategy params: %w", err)
	}

	// 전략 YAML 시간대가 우선
	if strategyCfg.Meta.Timezone != "" {
		cfg.Strategy.Timezone = strategyCfg.Meta.Timezone
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:            cfg,
		log:            log,
		loc:            loc,
		strategyConfig: strategyCfg,
		strategyYAML:   yamlData,
		params:         params,
		strategy:       trendday.New(params),
	}

	// 4. Price source
	if barsFile != "" {
		fileLoader, err := marketdata.NewFileLoader(barsFile)
		if err != nil {
			return nil, err
		}
		a.loader = fileLoader
		log.WithField("file", barsFile).Info("Using bar file")
		return a, nil
	}

	if err := a.connect(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// connect opens PostgreSQL and Redis and wires the cached repository
func (a *app) connect() error {
	if err := a.cfg.RequireDatabase(); err != nil {
		return fmt.Errorf("%w (or pass --bars)", err)
	}

	db, err := database.New(a.cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.db = db
	a.log.Info("Connected to database")

	rdb, err := redis.New(a.cfg)
	if err != nil {
		// 캐시 없이도 동작
		a.log.WithError(err).Warn("Redis unavailable, continuing without cache")
		a.cfg.Redis.Enabled = false
		rdb, _ = redis.New(a.cfg)
	}
	a.redis = rdb

	repo := marketdata.NewRepository(db.Pool, a.loc)
	a.loader = marketdata.NewCachedRepository(repo, redis.NewCache(rdb, "trendday"), a.loc, a.log)
	return nil
}

// orderStore returns the PostgreSQL order repository, nil without a database
func (a *app) orderStore() contracts.OrderStore {
	if a.db == nil {
		return nil
	}
	return execution.NewRepository(a.db.Pool)
}

func (a *app) planner() *execution.Planner {
	return execution.NewPlanner(execution.PlannerConfig{
		Account:  a.cfg.Strategy.Account,
		Equity:   decimal.NewFromFloat(a.cfg.Strategy.AccountEquity),
		OrderRef: a.params.Code,
	}, a.log)
}

func (a *app) runner(store contracts.OrderStore) *trendday.Runner {
	return trendday.NewRunner(a.strategy, a.loader, store, a.planner(), trendday.RunnerConfig{
		Location:     a.loc,
		LookbackDays: a.cfg.Strategy.LookbackDays,
	}, a.log)
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// parseSessionDate parses YYYY-MM-DD in the exchange time zone. Empty means now.
func (a *app) parseSessionDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, a.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
