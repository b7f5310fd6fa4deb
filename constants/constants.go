package constants

const (
	// HandlerLogTag is a tag we are using to identify log messages from the handler
	HandlerLogTag = "API HANDLERS"
	// AuthLogTag identifies log messages from the basic auth middleware
	AuthLogTag = "BASIC AUTH"
)

// routes
const (
	RootPath          = "/"
	HealthPath        = "/health"
	MetricsPath       = "/metrics"
	FirstTicketPath   = "/GetFristTicket"
	FirstTicketAlias  = "/GetFirstTicket"
	TroquelPath       = "/GetTroquel"
	HIVCheckPath      = "/hiv/check"
	DefaultListenHost = "0.0.0.0"
	DefaultListenPort = 8080
)

// response details
const (
	TicketNotFound      = "No se encontró el ticket"
	SocioMismatch       = "El número de socio no coincide con el ticket"
	NotAuthenticated    = "Not authenticated"
	InvalidCredentials  = "Credenciales inválidas"
	DatabaseQueryFailed = "Error consultando base"
)

// storage types
const (
	BuiltinStorage = "builtin"
	FileStorage    = "file"
	MongoStorage   = "mongo"
)

// cache backends
const (
	NoCache       = "none"
	InMemoryCache = "in_memory"
	RedisCache    = "redis"
	MongoCache    = "mongo"
)
