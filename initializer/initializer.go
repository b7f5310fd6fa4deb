package initializer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/orchestrate-poc/endpoints/backends"
	"github.com/orchestrate-poc/endpoints/configuration"
	"github.com/orchestrate-poc/endpoints/constants"
	"github.com/orchestrate-poc/endpoints/data_loader"
	logger "github.com/orchestrate-poc/endpoints/log"
	"github.com/orchestrate-poc/endpoints/medications"
	"github.com/orchestrate-poc/endpoints/metrics"
)

var log = logger.Get()
var initializerLogger = log.WithField("prefix", "INITIALIZER")

// CacheKeyPrefix prefixes HIV check results in shared stores
const CacheKeyPrefix = "hiv-check."

// InitBackend creates the ticket store and, when configured, the HIV check cache.
// New cache backends must be registered here.
func InitBackend(cacheConf configuration.Cache) (ticketStore backends.Backend, cacheStore backends.Backend, err error) {
	ticketStore = &backends.InMemoryBackend{}
	initializerLogger.Info("Initialising Ticket Store")
	if err := ticketStore.Init(nil); err != nil {
		return nil, nil, err
	}

	ttl := time.Duration(cacheConf.TTL) * time.Second
	var cacheConfig interface{}

	switch cacheConf.Type {
	case constants.NoCache, "":
		return ticketStore, nil, nil
	case constants.InMemoryCache:
		cacheStore = &backends.InMemoryBackend{}
	case constants.RedisCache:
		initializerLogger.WithField("type", cacheConf.Type).Info("Initialising HIV Check Cache")
		redisConf := cacheConf.Redis
		db, err := backends.NewRedisClient(&redisConf)
		if err != nil {
			return nil, nil, fmt.Errorf("init %s cache: %w", cacheConf.Type, err)
		}
		return ticketStore, CreateBackendFromRedisConn(db, &redisConf, ttl), nil
	case constants.MongoCache:
		cacheStore = &backends.MongoBackend{}
		cacheConfig = cacheConf.Mongo
	default:
		return nil, nil, fmt.Errorf("unknown cache type %q", cacheConf.Type)
	}

	initializerLogger.WithField("type", cacheConf.Type).Info("Initialising HIV Check Cache")
	if err := cacheStore.Init(cacheConfig); err != nil {
		return nil, nil, fmt.Errorf("init %s cache: %w", cacheConf.Type, err)
	}
	return ticketStore, cacheStore, nil
}

// CreateBackendFromRedisConn creates the HIV check cache on an existing redis client.
// conf may be nil, the default timeout then applies.
func CreateBackendFromRedisConn(db redis.UniversalClient, conf *backends.RedisConfig, ttl time.Duration) backends.Backend {
	redisBackend := &backends.RedisBackend{KeyPrefix: CacheKeyPrefix, TTL: ttl}
	redisBackend.SetDb(db, conf)
	return redisBackend
}

// LoadTickets fills store from the configured ticket source
func LoadTickets(conf configuration.Configuration, store backends.Backend) (data_loader.DataLoader, error) {
	loader, err := data_loader.CreateDataLoader(conf)
	if err != nil {
		return nil, fmt.Errorf("create ticket loader: %w", err)
	}
	if err := loader.LoadIntoStore(store); err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	return loader, nil
}

// InitChecker opens the medication database and wraps the checker with the cache.
// A missing or unreachable database is logged, not fatal: checks then fail with 500.
func InitChecker(conf configuration.Database, cache backends.Backend, m *metrics.Metrics) (medications.Checker, *sql.DB) {
	db, err := medications.OpenDatabase(conf)
	if err != nil {
		initializerLogger.WithError(err).Warn("HIV medication database unavailable at start")
	}

	var checker medications.Checker = medications.NewPostgresChecker(db, conf.Schema, conf.Table, conf.Column)
	if cache != nil {
		cached := &medications.CachedChecker{Checker: checker, Cache: cache}
		if m != nil {
			cached.OnHit = m.RecordCacheHit
		}
		checker = cached
	}
	return checker, db
}
