package logger

import (
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"
)

// RollbarHook forwards error-level events and above to Rollbar.
type RollbarHook struct {
	report func(level zerolog.Level, msg string)
}

// Run implements zerolog.Hook.
func (h RollbarHook) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if level < zerolog.ErrorLevel || level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}
	h.report(level, msg)
}

func reportToRollbar(level zerolog.Level, msg string) {
	if level >= zerolog.FatalLevel {
		rollbar.Critical(msg)
		// Fatal exits right after the hook returns.
		rollbar.Wait()
		return
	}
	rollbar.Error(msg)
}

// WithRollbar configures the Rollbar client and attaches a hook to log.
// An empty token returns log unchanged.
func WithRollbar(log zerolog.Logger, token, environment, version string) zerolog.Logger {
	if token == "" {
		return log
	}

	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetCodeVersion(version)
	if host, err := os.Hostname(); err == nil {
		rollbar.SetServerHost(host)
	}

	return log.Hook(RollbarHook{report: reportToRollbar})
}

// Flush waits for queued Rollbar items to be sent.
func Flush() {
	rollbar.Wait()
}
