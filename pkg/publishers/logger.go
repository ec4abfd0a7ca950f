package publishers

import "github.com/madefire/madefire-go/pkg/api"

// Logger is the SDK logging surface, so one logger serves the transport and
// every publisher.
type Logger = api.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return api.NopLogger{}
	}
	return log
}
