package error

import (
	"encoding/json"
	"fmt"
	"net/http"

	logger "github.com/orchestrate-poc/endpoints/log"
	"github.com/sirupsen/logrus"
)

var log = logger.Get()

// APIErrorMessage is the body written for every failed request
type APIErrorMessage struct {
	Detail string `json:"detail"`
}

// HandleError is a generic error handler
func HandleError(tag string, errorMsg string, rawErr error, code int, w http.ResponseWriter, r *http.Request) {
	entry := log.WithFields(logrus.Fields{
		"prefix":   tag,
		"errorMsg": errorMsg,
		"path":     r.URL.Path,
	})
	if code >= http.StatusInternalServerError {
		entry.Error(rawErr)
	} else {
		entry.Warn(rawErr)
	}

	responseMsg, err := json.Marshal(&APIErrorMessage{Detail: errorMsg})
	if err != nil {
		log.WithField("prefix", tag).Error("[Error Handler] Couldn't marshal error stats: ", err)
		fmt.Fprintf(w, "System Error")
		return
	}

	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Basic")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(responseMsg)
}
