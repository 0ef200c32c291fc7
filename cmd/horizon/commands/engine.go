package commands

import (
	"fmt"

	"github.com/wonny/horizon/internal/barcache"
	"github.com/wonny/horizon/internal/barstore"
	"github.com/wonny/horizon/internal/engineconfig"
	"github.com/wonny/horizon/internal/external/naver"
	"github.com/wonny/horizon/internal/regime"
	"github.com/wonny/horizon/internal/scan"
	"github.com/wonny/horizon/internal/scoring"
	"github.com/wonny/horizon/internal/screening"
	"github.com/wonny/horizon/pkg/config"
	"github.com/wonny/horizon/pkg/database"
	"github.com/wonny/horizon/pkg/httputil"
	"github.com/wonny/horizon/pkg/logger"
	"github.com/wonny/horizon/pkg/redis"
)

// engine bundles the fully wired scanning pipeline for CLI commands
// ⭐ SSOT: 파이프라인 조립은 이 파일에서만
type engine struct {
	cfg          *config.Config
	engineCfg    *engineconfig.Config
	engineCfgRaw []byte
	log          *logger.Logger
	db           *database.DB
	rdb          *redis.Client
	store        *barstore.Postgres
	cache        *barcache.Manager
	analyzer     *regime.Analyzer
	orchestrator *scan.Orchestrator
	repo         *scan.Repository
}

// initEngine wires every pipeline component the way production runs it.
func initEngine() (*engine, error) {
	// 1. Load env config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load engine config (YAML SSOT)
	path := cfg.EngineConfigPath
	if engineConfig != "" {
		path = engineConfig
	}
	engineCfg, raw, err := engineconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load engine config %s: %w", path, err)
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 5. Connect to Redis (no-op client when disabled)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 6. External bar source with write-through persistence
	httpClient := httputil.New(log)
	naverClient := naver.NewClient(httpClient, cfg.Naver, log)
	naverClient.SetSharedLimiter(redis.NewRateLimiter(rdb, "horizon"))

	store := barstore.NewPostgres(db.Pool)
	provider := barstore.NewWriteThrough(naverClient, store, log)

	// 7. Pipeline components
	cache := barcache.New(provider, engineCfg.Cache.BootstrapDays, engineCfg.FetchTimeout(), log)
	analyzer := regime.New(cache, engineCfg, redis.NewCache(rdb, "horizon"), log)
	stage1 := screening.New(engineCfg.Stage1, log)
	scorer := scoring.NewScorer(engineCfg, log)
	repo := scan.NewRepository(db.Pool)
	orchestrator := scan.NewOrchestrator(cache, analyzer, stage1, scorer, engineCfg, repo, log)

	return &engine{
		cfg:          cfg,
		engineCfg:    engineCfg,
		engineCfgRaw: raw,
		log:          log,
		db:           db,
		rdb:          rdb,
		store:        store,
		cache:        cache,
		analyzer:     analyzer,
		orchestrator: orchestrator,
		repo:         repo,
	}, nil
}

// close releases shared connections
func (e *engine) close() {
	if e.rdb != nil {
		e.rdb.Close()
	}
	if e.db != nil {
		e.db.Close()
	}
}
