package tickets

// TroquelSystem is the coding system URI of troquel codes.
const TroquelSystem = "https://www.osde.com.ar/troquel"

type Coding struct {
	System string `json:"system"`
	Code   string `json:"code"`
}

type Code struct {
	Coding []Coding `json:"coding"`
	Text   string   `json:"text"`
}

// Troquel is the medication resolved for a ticket.
type Troquel struct {
	Code Code `json:"code"`
}

// HIVCheckResponse answers whether a presentation is an HIV programme medication.
type HIVCheckResponse struct {
	Presentacion string `json:"presentacion"`
	EsHIV        bool   `json:"es_hiv"`
}
