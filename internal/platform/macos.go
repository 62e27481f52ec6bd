package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"howett.net/plist"

	"github.com/emosenkis/family-policy/internal/browser"
	"github.com/emosenkis/family-policy/internal/utils"
)

// macosAdaptor writes macOS managed-preferences plists, grounded on
// original_source/src-tauri/src/platform/macos.rs.
type macosAdaptor struct{}

// NewMacOSAdaptor returns the macOS managed-preferences adaptor.
func NewMacOSAdaptor() Adaptor { return macosAdaptor{} }

var managedPreferencesDir = "/Library/Managed Preferences"

func bundleID(b browser.Browser) string {
	switch b {
	case browser.Chrome:
		return "com.google.Chrome"
	case browser.Edge:
		return "com.microsoft.Edge"
	case browser.Firefox:
		return "org.mozilla.firefox"
	default:
		return ""
	}
}

func plistPath(bundleID string) string {
	return filepath.Join(managedPreferencesDir, bundleID+".plist")
}

func readPlistDict(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("reading plist %s: %w", path, err)
	}
	var dict map[string]interface{}
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		// An unparsable existing plist is treated as empty and replaced
		// rather than aborting the apply; the parse error is not logged.
		return map[string]interface{}{}, nil
	}
	if dict == nil {
		dict = map[string]interface{}{}
	}
	return dict, nil
}

func writePlistDict(path string, dict map[string]interface{}) error {
	data, err := plist.MarshalIndent(dict, plist.XMLFormat, "\t")
	if err != nil {
		return fmt.Errorf("encoding plist %s: %w", path, err)
	}
	return utils.AtomicWrite(path, data, 0o644)
}

func (macosAdaptor) Apply(b browser.Browser, surface Surface) error {
	id := bundleID(b)
	if id == "" {
		return fmt.Errorf("macos adaptor: unsupported browser %q", b)
	}
	path := plistPath(id)

	if surface.IsEmpty() {
		return macosAdaptor{}.Remove(b)
	}

	dict, err := readPlistDict(path)
	if err != nil {
		return err
	}

	if len(surface.Extensions) > 0 {
		ids := make([]interface{}, 0, len(surface.Extensions))
		for _, ext := range surface.Extensions {
			ids = append(ids, ForcelistEntry(ext))
		}
		dict["ExtensionInstallForcelist"] = ids
	} else {
		delete(dict, "ExtensionInstallForcelist")
	}

	switch b {
	case browser.Chrome:
		setOrDelete(dict, "IncognitoModeAvailability", boolToDisabledInt(surface.DisablePrivateMode))
	case browser.Edge:
		setOrDelete(dict, "InPrivateModeAvailability", boolToDisabledInt(surface.DisablePrivateMode))
	case browser.Firefox:
		setOrDelete(dict, "DisablePrivateBrowsing", surface.DisablePrivateMode)
	}
	if b != browser.Firefox {
		setOrDelete(dict, "BrowserGuestModeEnabled", invertedBool(surface.DisableGuestMode))
	}

	if err := writePlistDict(path, dict); err != nil {
		return err
	}
	return applyExtensionSettingsPlists(id, surface.ExtensionSettings)
}

// applyExtensionSettingsPlists writes one separate plist per extension id
// carrying its free-form settings map, at
// "{bundle_id}.extensions.{ext_id}.plist".
func applyExtensionSettingsPlists(bundleID string, settings map[string]map[string]interface{}) error {
	for extID, values := range settings {
		path := filepath.Join(managedPreferencesDir, fmt.Sprintf("%s.extensions.%s.plist", bundleID, extID))
		if len(values) == 0 {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing extension settings plist %s: %w", path, err)
			}
			continue
		}
		dict := make(map[string]interface{}, len(values))
		for k, v := range values {
			dict[k] = v
		}
		if err := writePlistDict(path, dict); err != nil {
			return err
		}
	}
	return nil
}

func boolToDisabledInt(v *bool) interface{} {
	if v == nil || !*v {
		return nil
	}
	return 1
}

func invertedBool(v *bool) interface{} {
	if v == nil {
		return nil
	}
	enabled := !*v
	return enabled
}

func setOrDelete(dict map[string]interface{}, key string, value interface{}) {
	if value == nil {
		delete(dict, key)
		return
	}
	dict[key] = value
}

// RemoveExtensionSettingsPlist deletes the per-extension settings plist for
// extID under b's bundle, if present. Neither the reconciler nor Remove
// calls it, so a per-extension plist stays in place after its extension
// leaves the surface.
func RemoveExtensionSettingsPlist(b browser.Browser, extID string) error {
	id := bundleID(b)
	if id == "" {
		return nil
	}
	path := filepath.Join(managedPreferencesDir, fmt.Sprintf("%s.extensions.%s.plist", id, extID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing extension settings plist %s: %w", path, err)
	}
	return nil
}

func (macosAdaptor) Remove(b browser.Browser) error {
	id := bundleID(b)
	if id == "" {
		return fmt.Errorf("macos adaptor: unsupported browser %q", b)
	}
	path := plistPath(id)
	dict, err := readPlistDict(path)
	if err != nil {
		return err
	}
	if len(dict) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing plist %s: %w", path, err)
		}
		return nil
	}

	for _, key := range []string{
		"ExtensionInstallForcelist", "IncognitoModeAvailability",
		"InPrivateModeAvailability", "DisablePrivateBrowsing", "BrowserGuestModeEnabled",
	} {
		delete(dict, key)
	}

	if len(dict) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing plist %s: %w", path, err)
		}
		return nil
	}
	return writePlistDict(path, dict)
}
