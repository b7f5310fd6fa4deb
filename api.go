package main

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gofrs/uuid"

	"github.com/orchestrate-poc/endpoints/configuration"
	"github.com/orchestrate-poc/endpoints/constants"
	orcherrors "github.com/orchestrate-poc/endpoints/error"
	logger "github.com/orchestrate-poc/endpoints/log"
)

// RequestIDHeader carries the request id; generated when the caller sends none
const RequestIDHeader = "X-Request-ID"

var accessLog = logger.GetRaw()

var errMissingCredentials = errors.New("missing or malformed basic auth header")
var errCredentialMismatch = errors.New("credential mismatch")

// IsAuthenticated guards h with the configured basic auth credentials
func IsAuthenticated(auth configuration.Auth, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			orcherrors.HandleError(constants.AuthLogTag, constants.NotAuthenticated, errMissingCredentials, http.StatusUnauthorized, w, r)
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(auth.Username)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(auth.Password)) == 1
		if !userOK || !passOK {
			orcherrors.HandleError(constants.AuthLogTag, constants.InvalidCredentials, errCredentialMismatch, http.StatusUnauthorized, w, r)
			return
		}

		h.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with an id and writes one access log line once
// served: method, path, status, duration and request id.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			if id, err := uuid.NewV4(); err == nil {
				requestID = id.String()
			}
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		accessLog.Infof("%s %s %d %s %s", r.Method, r.URL.Path, rec.status, time.Since(start), requestID)
	})
}
