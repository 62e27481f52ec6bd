// Package reconcile translates a PolicyDocument into per-browser policy
// surfaces, applies them idempotently through the platform adaptors, and
// computes read-only diffs against the previously applied state.
package reconcile

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/emosenkis/family-policy/internal/browser"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/platform"
)

// Hash returns the hex-encoded SHA-256 of raw document content. Apply
// compares it with the previous config_hash to short-circuit unchanged
// documents; the caller has already parsed the document by then.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// buildSurfaces reduces every PolicyEntry targeting browser b into one
// Surface (forced extensions plus the privacy flags the spec's mapping
// table assigns to b), keyed by b; a browser no entry targets has no key
// in the returned map.
func buildSurfaces(doc *config.PolicyDocument) map[browser.Browser]platform.Surface {
	surfaces := make(map[browser.Browser]platform.Surface)
	for _, entry := range doc.Policies {
		for _, b := range entry.Browsers {
			s := surfaces[b]
			for _, ext := range entry.Extensions {
				id, ok := ext.ID.GetID(b)
				if !ok {
					continue
				}
				if ext.ForceInstalled != nil && !*ext.ForceInstalled {
					continue
				}
				s.Extensions = append(s.Extensions, platform.ExtensionInstall{
					ID:  id,
					URL: updateURLFor(b, id),
				})
				if len(ext.Settings) > 0 {
					if s.ExtensionSettings == nil {
						s.ExtensionSettings = make(map[string]map[string]interface{})
					}
					s.ExtensionSettings[id] = ext.Settings
				}
			}
			if entry.DisablePrivateMode != nil {
				v := *entry.DisablePrivateMode
				s.DisablePrivateMode = &v
			}
			if b != browser.Firefox && entry.DisableGuestMode != nil {
				v := *entry.DisableGuestMode
				s.DisableGuestMode = &v
			}
			surfaces[b] = s
		}
	}
	return surfaces
}

func updateURLFor(b browser.Browser, id string) string {
	if b == browser.Firefox {
		return browser.FirefoxInstallURL(id)
	}
	return browser.ChromiumUpdateURL
}
