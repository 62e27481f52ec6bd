package platform

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/emosenkis/family-policy/internal/browser"
	"github.com/emosenkis/family-policy/internal/utils"
)

// linuxAdaptor writes browser-vendor JSON policy files atomically, grounded
// on the teacher's internal/install/firefox.go (which already writes the
// exact Firefox schema below) and original_source/src/platform/linux.rs.
type linuxAdaptor struct{}

// NewLinuxAdaptor returns the Linux JSON-policy-file adaptor.
func NewLinuxAdaptor() Adaptor { return linuxAdaptor{} }

// policyRootOverride lets tests redirect the three policy paths below under
// a temp directory; empty in production, where they are absolute.
var policyRootOverride string

func policyPath(b browser.Browser) (path string, isFirefoxSchema bool) {
	var rel string
	switch b {
	case browser.Chrome:
		rel, isFirefoxSchema = "etc/opt/chrome/policies/managed/browser-policy.json", false
	case browser.Edge:
		rel, isFirefoxSchema = "etc/opt/microsoft/edge/policies/managed/browser-policy.json", false
	case browser.Firefox:
		rel, isFirefoxSchema = "etc/firefox/policies/policies.json", true
	default:
		return "", false
	}
	if policyRootOverride == "" {
		return "/" + rel, isFirefoxSchema
	}
	return filepath.Join(policyRootOverride, rel), isFirefoxSchema
}

// chromiumPolicy is the flat schema Chrome and Edge share.
type chromiumPolicy struct {
	ExtensionInstallForcelist []string `json:"ExtensionInstallForcelist,omitempty"`
	IncognitoModeAvailability *int     `json:"IncognitoModeAvailability,omitempty"`
	InPrivateModeAvailability *int     `json:"InPrivateModeAvailability,omitempty"`
	BrowserGuestModeEnabled   *bool    `json:"BrowserGuestModeEnabled,omitempty"`
}

// firefoxExtensionSetting is one entry under ExtensionSettings.
type firefoxExtensionSetting struct {
	InstallationMode string `json:"installation_mode"`
	InstallURL       string `json:"install_url"`
}

// firefoxPolicies is the nested schema Firefox uses.
type firefoxPolicies struct {
	ExtensionSettings      map[string]firefoxExtensionSetting `json:"ExtensionSettings,omitempty"`
	DisablePrivateBrowsing *bool                               `json:"DisablePrivateBrowsing,omitempty"`
}

type firefoxDocument struct {
	Policies firefoxPolicies `json:"policies"`
}

func (linuxAdaptor) Apply(b browser.Browser, surface Surface) error {
	path, isFirefox := policyPath(b)
	if path == "" {
		return fmt.Errorf("linux adaptor: unsupported browser %q", b)
	}

	if surface.IsEmpty() {
		return linuxAdaptor{}.Remove(b)
	}

	var data []byte
	var err error
	if isFirefox {
		doc := firefoxDocument{Policies: firefoxPolicies{}}
		if len(surface.Extensions) > 0 {
			doc.Policies.ExtensionSettings = make(map[string]firefoxExtensionSetting, len(surface.Extensions))
			for _, ext := range surface.Extensions {
				doc.Policies.ExtensionSettings[ext.ID] = firefoxExtensionSetting{
					InstallationMode: "force_installed",
					InstallURL:       ext.URL,
				}
			}
		}
		if surface.DisablePrivateMode != nil && *surface.DisablePrivateMode {
			t := true
			doc.Policies.DisablePrivateBrowsing = &t
		}
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		policy := chromiumPolicy{}
		for _, ext := range surface.Extensions {
			policy.ExtensionInstallForcelist = append(policy.ExtensionInstallForcelist, ForcelistEntry(ext))
		}
		if surface.DisablePrivateMode != nil && *surface.DisablePrivateMode {
			disabled := 1
			if b == browser.Edge {
				policy.InPrivateModeAvailability = &disabled
			} else {
				policy.IncognitoModeAvailability = &disabled
			}
		}
		if surface.DisableGuestMode != nil {
			enabled := !*surface.DisableGuestMode
			policy.BrowserGuestModeEnabled = &enabled
		}
		data, err = json.MarshalIndent(policy, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding policy for %s: %w", b, err)
	}

	return utils.AtomicWrite(path, data, 0o644)
}

func (linuxAdaptor) Remove(b browser.Browser) error {
	path, _ := policyPath(b)
	if path == "" {
		return fmt.Errorf("linux adaptor: unsupported browser %q", b)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing policy file %s: %w", path, err)
	}
	// Clean up the parent directory if it is now empty.
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) == 0 {
		_ = os.Remove(dir)
	}
	return nil
}
