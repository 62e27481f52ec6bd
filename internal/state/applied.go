// Package state persists the two authoritative JSON documents the daemon
// and tracker each own exclusively — AppliedState and TrackerState — plus
// the capped UsageHistory, at fixed per-platform paths.
package state

import (
	"time"

	"github.com/emosenkis/family-policy/internal/browser"
)

// CurrentVersion is the schema version written to every persisted
// document. An unknown version on load is treated as absent, per spec.md
// §6 ("no attempted migration").
const CurrentVersion = "1.0"

// AppliedState is the reconciler's authoritative record of what each
// browser surface currently contains.
type AppliedState struct {
	Version         string          `json:"version"`
	ConfigHash      string          `json:"config_hash"`
	LastUpdated     time.Time       `json:"last_updated"`
	AppliedPolicies AppliedPolicies `json:"applied_policies"`

	// Remote-mode bookkeeping.
	ETag        string    `json:"etag,omitempty"`
	LastChecked time.Time `json:"last_checked,omitempty"`
	MachineID   string    `json:"machine_id,omitempty"`
}

// AppliedPolicies holds the per-browser applied state, each optional
// (absent iff that browser currently has nothing managed).
type AppliedPolicies struct {
	Chrome  *BrowserState `json:"chrome,omitempty"`
	Firefox *BrowserState `json:"firefox,omitempty"`
	Edge    *BrowserState `json:"edge,omitempty"`
}

// Get returns the applied state for b, or nil if nothing is applied there.
func (p *AppliedPolicies) Get(b browser.Browser) *BrowserState {
	switch b {
	case browser.Chrome:
		return p.Chrome
	case browser.Firefox:
		return p.Firefox
	case browser.Edge:
		return p.Edge
	default:
		return nil
	}
}

// Set records bs as the applied state for b (nil clears it).
func (p *AppliedPolicies) Set(b browser.Browser, bs *BrowserState) {
	switch b {
	case browser.Chrome:
		p.Chrome = bs
	case browser.Firefox:
		p.Firefox = bs
	case browser.Edge:
		p.Edge = bs
	}
}

// BrowserState is what was applied to one browser surface: the forced
// extension id list (in apply order) and the subset of privacy booleans
// relevant to that browser.
type BrowserState struct {
	Extensions             []string `json:"extensions"`
	DisableIncognito       *bool    `json:"disable_incognito,omitempty"`
	DisableInPrivate       *bool    `json:"disable_inprivate,omitempty"`
	DisablePrivateBrowsing *bool    `json:"disable_private_browsing,omitempty"`
	DisableGuestMode       *bool    `json:"disable_guest_mode,omitempty"`
}

// IsEmpty reports whether this browser has nothing left applied, in which
// case the reconciler removes the surface entirely instead of persisting
// an empty record.
func (b *BrowserState) IsEmpty() bool {
	if b == nil {
		return true
	}
	return len(b.Extensions) == 0 &&
		b.DisableIncognito == nil &&
		b.DisableInPrivate == nil &&
		b.DisablePrivateBrowsing == nil &&
		b.DisableGuestMode == nil
}

// NewAppliedState builds an empty, current-version AppliedState.
func NewAppliedState() *AppliedState {
	return &AppliedState{Version: CurrentVersion}
}
