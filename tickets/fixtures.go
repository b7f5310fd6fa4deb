package tickets

// Fixtures returns the built-in tickets: the first two dispense HIV programme
// medications, the last two do not.
func Fixtures() []Record {
	return []Record{
		{
			Ticket: Ticket{
				ObjectID:     "1269035B88971FD0A4EC29358D190ED9",
				Filial:       "60",
				Socio:        "61134592601 - CAROLINA",
				ID:           "1000073123",
				FechaEntrada: MustParseLocalTime("2025-09-16T21:57:32"),
			},
			Presentacion: "45282",
			Descripcion:  "ABACAVIR/LAMIVUDINA 600/300 MG",
		},
		{
			Ticket: Ticket{
				ObjectID:     "2369045C99982GE1B5FD39469E201FE0",
				Filial:       "60",
				Socio:        "62245693702 - ROBERTO",
				ID:           "1000073124",
				FechaEntrada: MustParseLocalTime("2025-09-17T10:30:15"),
			},
			Presentacion: "18001",
			Descripcion:  "EFAVIRENZ 600 MG",
		},
		{
			Ticket: Ticket{
				ObjectID:     "3470156D00093HF2C6GE40570F312GF1",
				Filial:       "60",
				Socio:        "63356704803 - MARIA",
				ID:           "1000073125",
				FechaEntrada: MustParseLocalTime("2025-09-17T14:45:20"),
			},
			Presentacion: "2039",
			Descripcion:  "IBUPROFENO 400 MG",
		},
		{
			Ticket: Ticket{
				ObjectID:     "4581267E11104IG3D7HF51681G423HG2",
				Filial:       "60",
				Socio:        "64467815904 - JUAN",
				ID:           "1000073126",
				FechaEntrada: MustParseLocalTime("2025-09-17T16:20:45"),
			},
			Presentacion: "3002",
			Descripcion:  "PARACETAMOL 500 MG",
		},
	}
}
