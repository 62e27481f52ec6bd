package reconcile

import (
	"github.com/emosenkis/family-policy/internal/browser"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/platform"
	"github.com/emosenkis/family-policy/internal/state"
)

// SettingChange is one privacy-flag difference between the prior and new
// surface for a browser.
type SettingChange struct {
	Browser browser.Browser
	Setting string
	Old     *bool
	New     *bool
}

// ExtensionDiff classifies one browser's extension ids against the prior
// applied state.
type ExtensionDiff struct {
	Browser   browser.Browser
	Added     []string
	Removed   []string
	Unchanged []string
}

// Diff compares the surfaces doc would produce against prev, without
// touching any policy surface. Safe to call in --dry-run and status paths.
func Diff(doc *config.PolicyDocument, prev state.AppliedPolicies) ([]ExtensionDiff, []SettingChange) {
	surfaces := buildSurfaces(doc)
	var extDiffs []ExtensionDiff
	var settingChanges []SettingChange

	for _, b := range browser.All {
		newSurface := surfaces[b]
		priorState := prev.Get(b)

		newIDs := make(map[string]bool, len(newSurface.Extensions))
		for _, ext := range newSurface.Extensions {
			newIDs[ext.ID] = true
		}
		var priorIDs []string
		priorIDSet := map[string]bool{}
		if priorState != nil {
			priorIDs = priorState.Extensions
			for _, id := range priorIDs {
				priorIDSet[id] = true
			}
		}

		var d ExtensionDiff
		d.Browser = b
		for _, ext := range newSurface.Extensions {
			if priorIDSet[ext.ID] {
				d.Unchanged = append(d.Unchanged, ext.ID)
			} else {
				d.Added = append(d.Added, ext.ID)
			}
		}
		for _, id := range priorIDs {
			if !newIDs[id] {
				d.Removed = append(d.Removed, id)
			}
		}
		if len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Unchanged) > 0 {
			extDiffs = append(extDiffs, d)
		}

		settingChanges = append(settingChanges, diffPrivacySettings(b, newSurface, priorState)...)
	}

	return extDiffs, settingChanges
}

// privacySettingName returns the state-store field name the spec's mapping
// table assigns browser b's private-mode flag, mirroring
// surfaceToBrowserState in apply.go.
func privacySettingName(b browser.Browser) string {
	switch b {
	case browser.Chrome:
		return "disable_incognito"
	case browser.Edge:
		return "disable_inprivate"
	case browser.Firefox:
		return "disable_private_browsing"
	default:
		return ""
	}
}

func boolChanged(old, new *bool) bool {
	if old == nil && new == nil {
		return false
	}
	if old == nil || new == nil {
		return true
	}
	return *old != *new
}

func diffPrivacySettings(b browser.Browser, newSurface platform.Surface, priorState *state.BrowserState) []SettingChange {
	var changes []SettingChange

	var priorPrivate, priorGuest *bool
	if priorState != nil {
		switch b {
		case browser.Chrome:
			priorPrivate = priorState.DisableIncognito
		case browser.Edge:
			priorPrivate = priorState.DisableInPrivate
		case browser.Firefox:
			priorPrivate = priorState.DisablePrivateBrowsing
		}
		priorGuest = priorState.DisableGuestMode
	}

	if boolChanged(priorPrivate, newSurface.DisablePrivateMode) {
		changes = append(changes, SettingChange{Browser: b, Setting: privacySettingName(b), Old: priorPrivate, New: newSurface.DisablePrivateMode})
	}
	if b != browser.Firefox && boolChanged(priorGuest, newSurface.DisableGuestMode) {
		changes = append(changes, SettingChange{Browser: b, Setting: "disable_guest_mode", Old: priorGuest, New: newSurface.DisableGuestMode})
	}
	return changes
}
