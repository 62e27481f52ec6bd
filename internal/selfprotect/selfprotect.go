// Package selfprotect implements a best-effort config-tamper watchdog,
// gated by EnforcementConfig.SelfProtection. It is additive texture, not a
// tamper-proofing system: a determined local administrator can always stop
// the service outright. Adapted from the teacher's
// internal/monitoring/tamper.go polling-checksum idiom.
package selfprotect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/emosenkis/family-policy/internal/logging"
	"github.com/emosenkis/family-policy/internal/platform"
)

var log = logging.For("selfprotect")

// DefaultCheckInterval matches the teacher's 30-second default.
const DefaultCheckInterval = 30 * time.Second

type fileState struct {
	exists   bool
	checksum string
}

// Watchdog periodically re-checksums a fixed set of files (the agent and
// time-limits config documents) and notifies when one is deleted or
// modified. It does not tell this tool's own writes apart from others.
type Watchdog struct {
	paths    []string
	interval time.Duration
	notifier platform.Notifier
	baseline map[string]fileState
}

// New builds a Watchdog over paths and captures their current checksums as
// the tamper-detection baseline.
func New(paths []string, interval time.Duration, notifier platform.Notifier) *Watchdog {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	w := &Watchdog{paths: paths, interval: interval, notifier: notifier, baseline: make(map[string]fileState)}
	for _, p := range paths {
		w.baseline[p] = checksum(p)
	}
	return w
}

// Run polls until ctx is cancelled, logging and notifying on every tamper
// event it detects.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if reasons := w.CheckOnce(); len(reasons) > 0 {
				w.raise(reasons)
			}
		}
	}
}

// CheckOnce compares every monitored path's current state against the
// baseline, returns a human-readable reason per discrepancy, and resets
// the baseline to the newly observed state so a single detected change is
// not reported on every subsequent tick.
func (w *Watchdog) CheckOnce() []string {
	var reasons []string
	for _, p := range w.paths {
		prior := w.baseline[p]
		current := checksum(p)

		switch {
		case prior.exists && !current.exists:
			reasons = append(reasons, fmt.Sprintf("file deleted: %s", p))
		case prior.exists && current.exists && prior.checksum != current.checksum:
			reasons = append(reasons, fmt.Sprintf("file modified: %s", p))
		case !prior.exists && current.exists:
			reasons = append(reasons, fmt.Sprintf("file recreated: %s", p))
		}
		w.baseline[p] = current
	}
	return reasons
}

func (w *Watchdog) raise(reasons []string) {
	log.Warn("tamper check failed", "reasons", reasons)
	if w.notifier == nil {
		return
	}
	message := "Configuration tampering detected:"
	for _, r := range reasons {
		message += " " + r + ";"
	}
	if err := w.notifier.Notify("Family Policy Security Alert", message); err != nil {
		log.Warn("tamper alert notification failed", "error", err)
	}
}

func checksum(path string) fileState {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileState{exists: false}
	}
	sum := sha256.Sum256(data)
	return fileState{exists: true, checksum: hex.EncodeToString(sum[:])}
}
