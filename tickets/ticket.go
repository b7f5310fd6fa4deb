// Package tickets holds the pharmacy ticket model served by the API and the
// troquel (medication code) derived from it.
package tickets

import "strings"

// Ticket is a dispensing request as exposed by the ticketing system.
type Ticket struct {
	ObjectID     string    `json:"ObjectID"`
	Filial       string    `json:"Filial"`
	Socio        string    `json:"Socio"`
	ID           string    `json:"ID"`
	FechaEntrada LocalTime `json:"FechaEntrada"`
}

// HasSocio reports whether socio is a substring of the stored member. The stored
// value looks like "61134592601 - CAROLINA" so a member number or a name fragment
// both match, and so does the empty string.
func (t Ticket) HasSocio(socio string) bool {
	return strings.Contains(t.Socio, socio)
}

// Record is a ticket together with the medication dispensed for it.
type Record struct {
	Ticket       Ticket `json:"ticket"`
	Presentacion string `json:"presentacion"`
	Descripcion  string `json:"descripcion"`
}

// Key is the store key of the record.
func (r Record) Key() string {
	return r.Ticket.ID
}

// Troquel builds the coded medication for the record.
func (r Record) Troquel() Troquel {
	return Troquel{
		Code: Code{
			Coding: []Coding{{System: TroquelSystem, Code: r.Presentacion}},
			Text:   r.Descripcion,
		},
	}
}
