package backends

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var mongoLogger = log.WithField("prefix", "MONGO STORE")

// MongoConfig points a MongoBackend at a collection
type MongoConfig struct {
	MongoURL   string
	DbName     string
	Collection string
	Timeout    int
}

type mongoEntry struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// MongoBackend implements Backend on a mongo collection, one document per key
type MongoBackend struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// Init connects to mongo
func (m *MongoBackend) Init(config interface{}) error {
	asJ, err := json.Marshal(config)
	if err != nil {
		return err
	}
	conf := MongoConfig{}
	if err := json.Unmarshal(asJ, &conf); err != nil {
		return err
	}
	if conf.MongoURL == "" {
		return errors.New("no mongo url set")
	}
	if conf.DbName == "" {
		conf.DbName = "orchestrate"
	}
	if conf.Collection == "" {
		conf.Collection = "hiv_check_cache"
	}

	m.timeout = 5 * time.Second
	if conf.Timeout > 0 {
		m.timeout = time.Duration(conf.Timeout) * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.MongoURL))
	if err != nil {
		mongoLogger.WithError(err).Error("failed to init MongoDB connection")
		return err
	}

	m.client = client
	m.coll = client.Database(conf.DbName).Collection(conf.Collection)
	mongoLogger.WithField("collection", conf.Collection).Info("Initialised")
	return nil
}

func (m *MongoBackend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m *MongoBackend) SetKey(key string, val interface{}) error {
	if m.coll == nil {
		return errors.New("mongo store not initialised")
	}

	asByte, err := json.Marshal(val)
	if err != nil {
		return err
	}

	ctx, cancel := m.ctx()
	defer cancel()
	_, err = m.coll.ReplaceOne(ctx, bson.M{"_id": key}, mongoEntry{Key: key, Value: string(asByte)},
		options.Replace().SetUpsert(true))
	if err != nil {
		mongoLogger.WithError(err).Error("error setting key in mongo")
	}
	return err
}

func (m *MongoBackend) GetKey(key string, target interface{}) error {
	if m.coll == nil {
		return errors.New("mongo store not initialised")
	}

	ctx, cancel := m.ctx()
	defer cancel()

	entry := mongoEntry{}
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		mongoLogger.WithError(err).Error("error reading key from mongo")
		return err
	}

	return json.Unmarshal([]byte(entry.Value), target)
}

func (m *MongoBackend) DeleteKey(key string) error {
	if m.coll == nil {
		return errors.New("mongo store not initialised")
	}

	ctx, cancel := m.ctx()
	defer cancel()
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *MongoBackend) GetAll() []interface{} {
	values := make([]interface{}, 0)
	if m.coll == nil {
		return values
	}

	ctx, cancel := m.ctx()
	defer cancel()

	cursor, err := m.coll.Find(ctx, bson.M{})
	if err != nil {
		mongoLogger.WithError(err).Error("error reading keys from mongo")
		return values
	}

	var entries []mongoEntry
	if err := cursor.All(ctx, &entries); err != nil {
		mongoLogger.WithError(err).Error("error decoding keys from mongo")
		return values
	}
	for _, e := range entries {
		values = append(values, e.Value)
	}
	return values
}

// Close disconnects the client
func (m *MongoBackend) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := m.ctx()
	defer cancel()
	return m.client.Disconnect(ctx)
}
