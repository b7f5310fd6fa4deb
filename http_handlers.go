package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Jeffail/gabs"
	"github.com/gorilla/mux"

	"github.com/orchestrate-poc/endpoints/backends"
	"github.com/orchestrate-poc/endpoints/configuration"
	"github.com/orchestrate-poc/endpoints/constants"
	orcherrors "github.com/orchestrate-poc/endpoints/error"
	"github.com/orchestrate-poc/endpoints/medications"
	"github.com/orchestrate-poc/endpoints/metrics"
	"github.com/orchestrate-poc/endpoints/tickets"
)

// publicEndpoints are listed by the index document
var publicEndpoints = []string{constants.FirstTicketPath, constants.TroquelPath, constants.HIVCheckPath}

// API holds what the handlers need to answer requests
type API struct {
	Tickets backends.Backend
	Checker medications.Checker
	Auth    configuration.Auth
	Metrics *metrics.Metrics
}

// Router registers every route of the service
func (a *API) Router() *mux.Router {
	p := mux.NewRouter()
	p.Use(RequestLogger)
	p.NotFoundHandler = RequestLogger(http.HandlerFunc(HandleNotFound))
	p.MethodNotAllowedHandler = RequestLogger(http.HandlerFunc(HandleMethodNotAllowed))
	if a.Metrics != nil {
		p.Use(a.Metrics.Middleware)
		p.Handle(constants.MetricsPath, a.Metrics.Handler()).Methods(http.MethodGet)
		p.NotFoundHandler = a.Metrics.Middleware(p.NotFoundHandler)
		p.MethodNotAllowedHandler = a.Metrics.Middleware(p.MethodNotAllowedHandler)
	}

	p.HandleFunc(constants.RootPath, HandleIndex).Methods(http.MethodGet)
	p.HandleFunc(constants.HealthPath, HandleHealthCheck).Methods(http.MethodGet)
	p.HandleFunc(constants.FirstTicketPath, a.HandleFirstTicket).Methods(http.MethodGet)
	p.HandleFunc(constants.FirstTicketAlias, a.HandleFirstTicket).Methods(http.MethodGet)
	p.HandleFunc(constants.TroquelPath, a.HandleTroquel).Methods(http.MethodGet)
	p.Handle(constants.HIVCheckPath, IsAuthenticated(a.Auth, http.HandlerFunc(a.HandleHIVCheck))).Methods(http.MethodGet)

	return p
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	asJSON, err := json.Marshal(body)
	if err != nil {
		mainLogger.WithError(err).Error("Couldn't marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(asJSON)
}

// requiredQuery returns the named query parameter, or answers 422 and returns false.
// An empty value (?name=) is present and returned as "".
func requiredQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	query := r.URL.Query()
	if !query.Has(name) {
		msg := "Falta el parámetro requerido: " + name
		orcherrors.HandleError(constants.HandlerLogTag, msg, errors.New("missing query parameter "+name), http.StatusUnprocessableEntity, w, r)
		return "", false
	}
	return query.Get(name), true
}

// HandleIndex lists the public endpoints
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	doc := gabs.New()
	doc.Array("endpoints")
	for _, path := range publicEndpoints {
		doc.ArrayAppend(path, "endpoints")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Bytes())
}

func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	orcherrors.HandleError(constants.HandlerLogTag, "Not Found", errors.New("no route for "+r.URL.Path), http.StatusNotFound, w, r)
}

func HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	orcherrors.HandleError(constants.HandlerLogTag, "Method Not Allowed", errors.New(r.Method+" not allowed on "+r.URL.Path), http.StatusMethodNotAllowed, w, r)
}

func HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// findRecord answers 404 itself when the ticket is unknown
func (a *API) findRecord(w http.ResponseWriter, r *http.Request, id string) (tickets.Record, bool) {
	record := tickets.Record{}
	err := a.Tickets.GetKey(id, &record)
	if errors.Is(err, backends.ErrNotFound) {
		orcherrors.HandleError(constants.HandlerLogTag, constants.TicketNotFound, fmt.Errorf("ticket %s: %w", id, err), http.StatusNotFound, w, r)
		return record, false
	}
	if err != nil {
		orcherrors.HandleError(constants.HandlerLogTag, "Error leyendo el ticket", err, http.StatusInternalServerError, w, r)
		return record, false
	}
	return record, true
}

// defaultRecord is the first ticket loaded into the store
func (a *API) defaultRecord() (tickets.Record, error) {
	record := tickets.Record{}
	all := a.Tickets.GetAll()
	if len(all) == 0 {
		return record, backends.ErrNotFound
	}

	raw, ok := all[0].(string)
	if !ok {
		return record, fmt.Errorf("unexpected stored value %T", all[0])
	}
	err := json.Unmarshal([]byte(raw), &record)
	return record, err
}

// HandleFirstTicket returns the ticket named by ?id, or the default ticket without it
func (a *API) HandleFirstTicket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Has("id") {
		id := query.Get("id")
		record, ok := a.findRecord(w, r, id)
		if ok {
			writeJSON(w, http.StatusOK, record.Ticket)
		}
		return
	}

	record, err := a.defaultRecord()
	if errors.Is(err, backends.ErrNotFound) {
		orcherrors.HandleError(constants.HandlerLogTag, constants.TicketNotFound, errors.New("ticket store is empty"), http.StatusNotFound, w, r)
		return
	}
	if err != nil {
		orcherrors.HandleError(constants.HandlerLogTag, "Error leyendo el ticket", err, http.StatusInternalServerError, w, r)
		return
	}
	writeJSON(w, http.StatusOK, record.Ticket)
}

// HandleTroquel resolves the medication of a ticket once the member matches it
func (a *API) HandleTroquel(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredQuery(w, r, "id")
	if !ok {
		return
	}
	socio, ok := requiredQuery(w, r, "socio")
	if !ok {
		return
	}

	record, ok := a.findRecord(w, r, id)
	if !ok {
		return
	}

	if !record.Ticket.HasSocio(socio) {
		orcherrors.HandleError(constants.HandlerLogTag, constants.SocioMismatch, fmt.Errorf("socio %q not on ticket %s", socio, id), http.StatusBadRequest, w, r)
		return
	}

	writeJSON(w, http.StatusOK, record.Troquel())
}

// HandleHIVCheck tells whether ?presentacion is listed as an HIV programme medication
func (a *API) HandleHIVCheck(w http.ResponseWriter, r *http.Request) {
	presentacion, ok := requiredQuery(w, r, "presentacion")
	if !ok {
		return
	}

	esHIV, err := a.Checker.IsHIV(r.Context(), presentacion)
	if err != nil {
		a.recordHIVCheck(metrics.OutcomeError)
		msg := fmt.Sprintf("%s: %v", constants.DatabaseQueryFailed, err)
		orcherrors.HandleError(constants.HandlerLogTag, msg, err, http.StatusInternalServerError, w, r)
		return
	}

	if esHIV {
		a.recordHIVCheck(metrics.OutcomePositive)
	} else {
		a.recordHIVCheck(metrics.OutcomeNegative)
	}

	writeJSON(w, http.StatusOK, tickets.HIVCheckResponse{Presentacion: presentacion, EsHIV: esHIV})
}

func (a *API) recordHIVCheck(outcome string) {
	if a.Metrics != nil {
		a.Metrics.RecordHIVCheck(outcome)
	}
}
