package data_loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/orchestrate-poc/endpoints/backends"
	"github.com/orchestrate-poc/endpoints/tickets"
)

// FileLoaderConf is the configuration struct for a FileLoader, takes a filename as main init
type FileLoaderConf struct {
	FileName string
}

// FileLoader implements DataLoader and will load tickets from a JSON file
type FileLoader struct {
	config FileLoaderConf
}

// Init initialises the file loader
func (f *FileLoader) Init(conf interface{}) error {
	fileConf, ok := conf.(FileLoaderConf)
	if !ok {
		return fmt.Errorf("unexpected file loader configuration %T", conf)
	}
	if fileConf.FileName == "" {
		return errors.New("no ticket file set")
	}
	f.config = fileConf
	return nil
}

// LoadIntoStore will load, unmarshal and copy tickets into a backend
func (f *FileLoader) LoadIntoStore(store backends.Backend) error {
	records := []tickets.Record{}

	thisSet, err := os.ReadFile(f.config.FileName)
	if err != nil {
		dataLogger.WithFields(logrus.Fields{
			"filename": f.config.FileName,
			"error":    err,
		}).Error("Load failure")
		return err
	}

	if err := json.Unmarshal(thisSet, &records); err != nil {
		dataLogger.WithField("error", err).Error("Couldn't unmarshal ticket set")
		return err
	}

	loaded := storeRecords(store, records)
	dataLogger.WithField("filename", f.config.FileName).Infof("Loaded %d tickets", loaded)
	return nil
}
