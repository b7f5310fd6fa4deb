package log

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// LevelEnv selects the log level: error, warn, debug or info (default).
const LevelEnv = "ORCH_LOGLEVEL"

var log = logrus.New()
var rawLog = logrus.New()

// RawFormatter writes only the entry message, used for the access log.
type RawFormatter struct{}

func (f *RawFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return []byte(entry.Message + "\n"), nil
}

func init() {
	formatter := new(prefixed.TextFormatter)
	formatter.TimestampFormat = `Jan 02 15:04:05`
	formatter.FullTimestamp = true

	log.Formatter = formatter
	rawLog.Formatter = new(RawFormatter)
}

func Get() *logrus.Logger {
	log.SetLevel(levelFromString(os.Getenv(LevelEnv)))
	return log
}

func levelFromString(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func GetRaw() *logrus.Logger {
	return rawLog
}
