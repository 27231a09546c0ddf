package monitor

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/cobaltlabs/sandboxsup/internal/obslog"
)

// limitLogEnc is the best-effort log stream for the LimitSetupFailed path
// (spec §7): a Setrlimit/Getrlimit failure never aborts a spawn, but it
// must not be silently swallowed either.
var (
	limitLogOnce sync.Once
	limitLogEnc  *json.Encoder
)

func limitLogger() *json.Encoder {
	limitLogOnce.Do(func() {
		limitLogEnc = json.NewEncoder(os.Stderr)
	})
	return limitLogEnc
}

// logLimitSetupFailure reports a non-fatal rlimit setup failure: the
// affected limit is left unenforced for this spawn rather than aborting it.
func logLimitSetupFailure(command, stage string, err error) {
	obslog.Encode(limitLogger(), os.Stderr, obslog.Event{
		Level:   "warn",
		Message: "limit setup failed: " + stage + " for " + command + ": " + err.Error(),
	})
}
