package backends

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

var redisLogger = log.WithField("prefix", "REDIS STORE")

// RedisBackend implements Backend on a redis server, cluster or sentinel group
type RedisBackend struct {
	db        redis.UniversalClient
	config    *RedisConfig
	KeyPrefix string
	TTL       time.Duration
}

type RedisConfig struct {
	Addrs                 []string
	MasterName            string
	Username              string
	Password              string
	Database              int
	Timeout               int
	MaxActive             int
	EnableCluster         bool
	UseSSL                bool
	SSLInsecureSkipVerify bool
}

func (c *RedisConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return time.Duration(c.Timeout) * time.Second
	}
	return 5 * time.Second
}

// NewRedisClient builds the client for a single node, a sentinel group or a cluster.
// No connection is made until the first command.
func NewRedisClient(config *RedisConfig) (redis.UniversalClient, error) {
	if len(config.Addrs) == 0 {
		return nil, errors.New("no redis addresses set")
	}

	var tlsConfig *tls.Config
	if config.UseSSL {
		tlsConfig = &tls.Config{InsecureSkipVerify: config.SSLInsecureSkipVerify}
	}

	if config.EnableCluster {
		redisLogger.Info("--> Using clustered mode")
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:       config.Addrs,
			Username:    config.Username,
			Password:    config.Password,
			PoolSize:    config.MaxActive,
			DialTimeout: config.timeout(),
			TLSConfig:   tlsConfig,
		}), nil
	}

	addrs := config.Addrs
	if config.MasterName == "" {
		// more than one address without a master name would switch to cluster mode
		addrs = addrs[:1]
	}

	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:       addrs,
		MasterName:  config.MasterName,
		Username:    config.Username,
		Password:    config.Password,
		DB:          config.Database,
		PoolSize:    config.MaxActive,
		DialTimeout: config.timeout(),
		TLSConfig:   tlsConfig,
	}), nil
}

// SetDb uses an existing client instead of creating one in Init
func (r *RedisBackend) SetDb(db redis.UniversalClient, config *RedisConfig) {
	r.db = db
	r.config = config
	if r.config == nil {
		r.config = &RedisConfig{}
	}
}

func (r *RedisBackend) fixKey(keyName string) string {
	return r.KeyPrefix + keyName
}

func (r *RedisBackend) cleanKey(keyName string) string {
	if len(keyName) >= len(r.KeyPrefix) && keyName[:len(r.KeyPrefix)] == r.KeyPrefix {
		return keyName[len(r.KeyPrefix):]
	}
	return keyName
}

func (r *RedisBackend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.config.timeout())
}

// Init decodes the redis settings and connects
func (r *RedisBackend) Init(config interface{}) error {
	asJ, err := json.Marshal(config)
	if err != nil {
		return err
	}
	fixedConf := RedisConfig{}
	if err := json.Unmarshal(asJ, &fixedConf); err != nil {
		return err
	}
	r.config = &fixedConf

	db, err := NewRedisClient(r.config)
	if err != nil {
		return err
	}
	r.db = db

	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.db.Ping(ctx).Err(); err != nil {
		redisLogger.WithError(err).Warn("Redis not reachable yet")
	}

	redisLogger.Info("Initialised")
	return nil
}

// SetKey will set the value of a key, expiring it after TTL when set
func (r *RedisBackend) SetKey(key string, val interface{}) error {
	if r.db == nil {
		return errors.New("redis store not initialised")
	}
	redisLogger.Debug("Setting key: ", r.fixKey(key))

	asByte, err := json.Marshal(val)
	if err != nil {
		return err
	}

	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.db.Set(ctx, r.fixKey(key), asByte, r.TTL).Err(); err != nil {
		redisLogger.WithField("error", err).Error("Error trying to set value")
		return err
	}
	return nil
}

// GetKey decodes the value of a key into target
func (r *RedisBackend) GetKey(key string, target interface{}) error {
	if r.db == nil {
		return errors.New("redis store not initialised")
	}
	redisLogger.Debug("Getting: ", r.fixKey(key))

	ctx, cancel := r.ctx()
	defer cancel()
	val, err := r.db.Get(ctx, r.fixKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		redisLogger.WithField("error", err).Debug("Error trying to get value")
		return err
	}

	return json.Unmarshal(val, target)
}

func (r *RedisBackend) DeleteKey(key string) error {
	if r.db == nil {
		return errors.New("redis store not initialised")
	}

	ctx, cancel := r.ctx()
	defer cancel()
	if err := r.db.Del(ctx, r.fixKey(key)).Err(); err != nil {
		redisLogger.WithFields(logrus.Fields{
			"error": err,
			"key":   r.fixKey(key),
		}).Error("Error trying to delete key")
		return err
	}
	return nil
}

// GetAll scans every key under KeyPrefix
func (r *RedisBackend) GetAll() []interface{} {
	values := make([]interface{}, 0)
	if r.db == nil {
		return values
	}

	ctx, cancel := r.ctx()
	defer cancel()

	iter := r.db.Scan(ctx, 0, r.fixKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		val, err := r.db.Get(ctx, iter.Val()).Result()
		if err != nil {
			redisLogger.WithField("key", r.cleanKey(iter.Val())).Debug("Key vanished during scan")
			continue
		}
		values = append(values, val)
	}
	if err := iter.Err(); err != nil {
		redisLogger.WithError(err).Error("Error scanning keys")
	}
	return values
}

// Close releases the client
func (r *RedisBackend) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
