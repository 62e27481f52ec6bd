package reconcile

import (
	"fmt"

	"github.com/emosenkis/family-policy/internal/apperr"
	"github.com/emosenkis/family-policy/internal/browser"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/logging"
	"github.com/emosenkis/family-policy/internal/platform"
	"github.com/emosenkis/family-policy/internal/state"
)

var log = logging.For("reconcile")

// applyOrder is the fixed per-spec surface order: Chrome, then Firefox,
// then Edge.
var applyOrder = browser.All

// Result is what one Apply call produced: the new applied-policies record
// (partial on error), whether anything actually changed, and the per-browser
// errors that were logged and skipped rather than aborting the whole run.
type Result struct {
	AppliedPolicies state.AppliedPolicies
	Unchanged       bool
	Errors          []error
}

// Apply reconciles doc against the local policy surfaces. adaptor performs
// the actual OS-level writes. prevHash is the config_hash from the previous
// AppliedState; if it matches Hash(content) and dryRun is false, Apply
// short-circuits and reports Unchanged without touching any surface.
// prevApplied is that same previous AppliedState's per-browser record: any
// browser present there but no longer targeted by doc is removed from its
// surface rather than left stale, so no extension identifier from a dropped
// browser survives the switch.
//
// A failure applying or removing one browser's surface is logged and does
// not prevent the others from being attempted: Result.AppliedPolicies
// records exactly the subset that succeeded (a dropped-and-removed browser
// is simply absent), and Result.Errors carries the rest so the caller can
// still persist the partial reality.
func Apply(doc *config.PolicyDocument, content []byte, prevHash string, prevApplied state.AppliedPolicies, adaptor platform.Adaptor, dryRun bool) Result {
	hash := Hash(content)
	if !dryRun && hash == prevHash {
		return Result{Unchanged: true}
	}

	surfaces := buildSurfaces(doc)
	var result Result

	for _, b := range applyOrder {
		surface, targeted := surfaces[b]
		if !targeted {
			if prevApplied.Get(b).IsEmpty() {
				continue
			}
			if dryRun {
				continue
			}
			if err := adaptor.Remove(b); err != nil {
				wrapped := apperr.New(apperr.KindSurfaceApply, fmt.Sprintf("removing dropped %s surface", b), err)
				log.Error("surface remove failed", "browser", b, "error", wrapped)
				result.Errors = append(result.Errors, wrapped)
				result.AppliedPolicies.Set(b, prevApplied.Get(b))
			}
			continue
		}
		if dryRun {
			result.AppliedPolicies.Set(b, surfaceToBrowserState(b, surface))
			continue
		}
		if err := adaptor.Apply(b, surface); err != nil {
			wrapped := apperr.New(apperr.KindSurfaceApply, fmt.Sprintf("applying %s surface", b), err)
			log.Error("surface apply failed", "browser", b, "error", wrapped)
			result.Errors = append(result.Errors, wrapped)
			continue
		}
		result.AppliedPolicies.Set(b, surfaceToBrowserState(b, surface))
	}

	return result
}

// surfaceToBrowserState projects the Surface back into the per-browser
// state-store shape, mapping the shared DisablePrivateMode flag onto the
// browser-specific field name the spec's table assigns it.
func surfaceToBrowserState(b browser.Browser, s platform.Surface) *state.BrowserState {
	bs := &state.BrowserState{DisableGuestMode: s.DisableGuestMode}
	for _, ext := range s.Extensions {
		bs.Extensions = append(bs.Extensions, ext.ID)
	}
	switch b {
	case browser.Chrome:
		bs.DisableIncognito = s.DisablePrivateMode
	case browser.Edge:
		bs.DisableInPrivate = s.DisablePrivateMode
	case browser.Firefox:
		bs.DisablePrivateBrowsing = s.DisablePrivateMode
		bs.DisableGuestMode = nil
	}
	if bs.IsEmpty() {
		return nil
	}
	return bs
}

// Uninstall removes every browser surface recorded in applied, in the fixed
// apply order, continuing past per-browser failures and aggregating them.
func Uninstall(applied state.AppliedPolicies, adaptor platform.Adaptor) []error {
	var errs []error
	for _, b := range applyOrder {
		if applied.Get(b).IsEmpty() {
			continue
		}
		if err := adaptor.Remove(b); err != nil {
			wrapped := apperr.New(apperr.KindSurfaceApply, fmt.Sprintf("removing %s surface", b), err)
			log.Error("surface remove failed", "browser", b, "error", wrapped)
			errs = append(errs, wrapped)
		}
	}
	return errs
}
