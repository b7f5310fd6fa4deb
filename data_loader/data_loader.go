package data_loader

import (
	"github.com/sirupsen/logrus"

	"github.com/orchestrate-poc/endpoints/backends"
	"github.com/orchestrate-poc/endpoints/configuration"
	"github.com/orchestrate-poc/endpoints/constants"
	logger "github.com/orchestrate-poc/endpoints/log"
	"github.com/orchestrate-poc/endpoints/tickets"
)

var log = logger.Get()
var dataLoaderLoggerTag = "TICKET LOADER"
var dataLogger = log.WithField("prefix", dataLoaderLoggerTag)

// DataLoader is an interface that defines how tickets are loaded from a source into a backend store
type DataLoader interface {
	Init(conf interface{}) error
	LoadIntoStore(backends.Backend) error
}

func reloadDataLoaderLogger() {
	log = logger.Get()
	dataLogger = &logrus.Entry{Logger: log}
	dataLogger = dataLogger.Logger.WithField("prefix", dataLoaderLoggerTag)
}

// CreateDataLoader picks the loader matching the configured storage type
func CreateDataLoader(config configuration.Configuration) (DataLoader, error) {
	var dataLoader DataLoader
	var loaderConf interface{}
	reloadDataLoaderLogger()

	storage := config.Storage
	if storage == nil {
		storage = &configuration.Storage{}
	}

	switch storage.StorageType {
	case constants.MongoStorage:
		dataLoader = &MongoLoader{}
		mongoConf := configuration.MongoConf{}
		if storage.MongoConf != nil {
			mongoConf = *storage.MongoConf
		}
		loaderConf = mongoConf
	case constants.FileStorage:
		dataLoader = &FileLoader{}
		loaderConf = FileLoaderConf{FileName: storage.TicketFile}
	default:
		dataLoader = BuiltinLoader{}
	}

	err := dataLoader.Init(loaderConf)
	return dataLoader, err
}

// storeRecords writes every record with an ID into store and returns how many were stored
func storeRecords(store backends.Backend, records []tickets.Record) int {
	var loaded int
	for _, record := range records {
		if record.Key() == "" {
			dataLogger.WithField("object_id", record.Ticket.ObjectID).Warn("Skipping ticket without ID")
			continue
		}
		if err := store.SetKey(record.Key(), record); err != nil {
			dataLogger.WithField("error", err).Error("Couldn't store ticket")
			continue
		}
		loaded++
	}
	return loaded
}
