package data_loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orchestrate-poc/endpoints/backends"
	"github.com/orchestrate-poc/endpoints/configuration"
	"github.com/orchestrate-poc/endpoints/tickets"
)

var (
	mongoPrefix       = "mongo"
	defaultDbName     = "orchestrate"
	defaultCollection = "tickets"
	mongoTimeout      = 10 * time.Second
)

// mongoRecord is the document shape of a ticket. FechaEntrada is a BSON date.
type mongoRecord struct {
	Ticket struct {
		ObjectID     string    `bson:"ObjectID"`
		Filial       string    `bson:"Filial"`
		Socio        string    `bson:"Socio"`
		ID           string    `bson:"ID"`
		FechaEntrada time.Time `bson:"FechaEntrada"`
	} `bson:"ticket"`
	Presentacion string `bson:"presentacion"`
	Descripcion  string `bson:"descripcion"`
}

func (m mongoRecord) toRecord() tickets.Record {
	return tickets.Record{
		Ticket: tickets.Ticket{
			ObjectID:     m.Ticket.ObjectID,
			Filial:       m.Ticket.Filial,
			Socio:        m.Ticket.Socio,
			ID:           m.Ticket.ID,
			FechaEntrada: tickets.LocalTime{Time: m.Ticket.FechaEntrada.UTC()},
		},
		Presentacion: m.Presentacion,
		Descripcion:  m.Descripcion,
	}
}

// MongoLoader implements DataLoader and will load tickets from a mongo collection
type MongoLoader struct {
	config     configuration.MongoConf
	client     *mongo.Client
	collection *mongo.Collection
}

// Init initialises the mongo client, the connection itself is established lazily
func (m *MongoLoader) Init(conf interface{}) error {
	mongoConf, ok := conf.(configuration.MongoConf)
	if !ok {
		return fmt.Errorf("unexpected mongo loader configuration %T", conf)
	}
	if mongoConf.MongoURL == "" {
		return errors.New("no mongo url set")
	}
	if mongoConf.DbName == "" {
		mongoConf.DbName = defaultDbName
	}
	if mongoConf.Collection == "" {
		mongoConf.Collection = defaultCollection
	}
	m.config = mongoConf

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoConf.MongoURL))
	if err != nil {
		dataLogger.WithError(err).WithField("prefix", mongoPrefix).Error("failed to init MongoDB connection")
		return err
	}

	m.client = client
	m.collection = client.Database(mongoConf.DbName).Collection(mongoConf.Collection)
	return nil
}

// handleEmptyTicketsError treats an empty collection as an empty ticket set
func handleEmptyTicketsError(err error) error {
	if err == nil || errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	return err
}

// LoadIntoStore will load, unmarshal and copy tickets into a backend
func (m *MongoLoader) LoadIntoStore(store backends.Backend) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	var docs []mongoRecord
	cursor, err := m.collection.Find(ctx, bson.M{})
	if err == nil {
		err = cursor.All(ctx, &docs)
	}
	if err := handleEmptyTicketsError(err); err != nil {
		dataLogger.Error("error reading tickets from mongo: " + err.Error())
		return err
	}

	records := make([]tickets.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.toRecord())
	}

	loaded := storeRecords(store, records)
	dataLogger.WithField("collection", m.config.Collection).Infof("Loaded %d tickets from Mongo", loaded)
	return nil
}

// Close disconnects the client
func (m *MongoLoader) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
