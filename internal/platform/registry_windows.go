package platform

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/windows/registry"

	"github.com/emosenkis/family-policy/internal/browser"
)

// windowsAdaptor writes Chrome/Edge policy to HKLM\SOFTWARE\Policies and
// Firefox policy via its own registry tree, grounded on
// original_source/src-tauri/src/platform/windows.rs.
type windowsAdaptor struct{}

// NewWindowsAdaptor returns the Windows registry adaptor.
func NewWindowsAdaptor() Adaptor { return windowsAdaptor{} }

func policyKeyPath(b browser.Browser) string {
	switch b {
	case browser.Chrome:
		return `SOFTWARE\Policies\Google\Chrome`
	case browser.Edge:
		return `SOFTWARE\Policies\Microsoft\Edge`
	case browser.Firefox:
		return `SOFTWARE\Policies\Mozilla\Firefox`
	default:
		return ""
	}
}

func (windowsAdaptor) Apply(b browser.Browser, surface Surface) error {
	keyPath := policyKeyPath(b)
	if keyPath == "" {
		return fmt.Errorf("windows adaptor: unsupported browser %q", b)
	}

	if surface.IsEmpty() {
		return windowsAdaptor{}.Remove(b)
	}

	key, _, err := registry.CreateKey(registry.LOCAL_MACHINE, keyPath, registry.ALL_ACCESS)
	if err != nil {
		return fmt.Errorf("opening policy key %s: %w", keyPath, err)
	}
	defer key.Close()

	privacyValueName := "IncognitoModeAvailability"
	if b == browser.Edge {
		privacyValueName = "InPrivateModeAvailability"
	}
	if b == browser.Firefox {
		if err := setOrDeleteDWORD(key, "DisablePrivateBrowsing", surface.DisablePrivateMode, false); err != nil {
			return err
		}
	} else {
		if err := setOrDeleteDWORDDisabled(key, privacyValueName, surface.DisablePrivateMode); err != nil {
			return err
		}
	}
	if b != browser.Firefox {
		if err := setOrDeleteDWORD(key, "BrowserGuestModeEnabled", surface.DisableGuestMode, true); err != nil {
			return err
		}
	}

	forcelistKey, _, err := registry.CreateKey(registry.LOCAL_MACHINE, keyPath+`\ExtensionInstallForcelist`, registry.ALL_ACCESS)
	if err != nil {
		return fmt.Errorf("opening forcelist key for %s: %w", b, err)
	}
	defer forcelistKey.Close()

	if err := clearNumberedValues(forcelistKey); err != nil {
		return fmt.Errorf("clearing existing forcelist for %s: %w", b, err)
	}
	for i, ext := range surface.Extensions {
		if err := forcelistKey.SetStringValue(strconv.Itoa(i+1), ForcelistEntry(ext)); err != nil {
			return fmt.Errorf("writing forcelist value for %s: %w", b, err)
		}
	}

	for extID, values := range surface.ExtensionSettings {
		if err := writeExtensionSettings(keyPath, extID, values); err != nil {
			return err
		}
	}

	return nil
}

func clearNumberedValues(key registry.Key) error {
	names, err := key.ReadValueNames(-1)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := key.DeleteValue(name); err != nil {
			return err
		}
	}
	return nil
}

// setOrDeleteDWORDDisabled writes 1 when the flag is set (meaning
// "disabled"), matching the IncognitoModeAvailability/InPrivateModeAvailability
// semantics, or deletes the value otherwise.
func setOrDeleteDWORDDisabled(key registry.Key, name string, flag *bool) error {
	if flag == nil || !*flag {
		err := key.DeleteValue(name)
		if err != nil && err != registry.ErrNotExist {
			return err
		}
		return nil
	}
	return key.SetDWordValue(name, 1)
}

// setOrDeleteDWORD writes the flag verbatim (optionally inverted),
// deleting the value when flag is nil.
func setOrDeleteDWORD(key registry.Key, name string, flag *bool, invert bool) error {
	if flag == nil {
		err := key.DeleteValue(name)
		if err != nil && err != registry.ErrNotExist {
			return err
		}
		return nil
	}
	v := *flag
	if invert {
		v = !v
	}
	var dword uint32
	if v {
		dword = 1
	}
	return key.SetDWordValue(name, dword)
}

func writeExtensionSettings(browserKeyPath, extID string, values map[string]interface{}) error {
	path := browserKeyPath + `\3rdparty\extensions\` + extID + `\policy`
	key, _, err := registry.CreateKey(registry.LOCAL_MACHINE, path, registry.ALL_ACCESS)
	if err != nil {
		return fmt.Errorf("opening extension settings key %s: %w", path, err)
	}
	defer key.Close()

	for name, value := range values {
		switch v := value.(type) {
		case bool:
			dword := uint32(0)
			if v {
				dword = 1
			}
			if err := key.SetDWordValue(name, dword); err != nil {
				return err
			}
		case int:
			if err := key.SetDWordValue(name, uint32(v)); err != nil {
				return err
			}
		case string:
			if err := key.SetStringValue(name, v); err != nil {
				return err
			}
		case []string:
			subKey, _, err := registry.CreateKey(registry.LOCAL_MACHINE, path+`\`+name, registry.ALL_ACCESS)
			if err != nil {
				return err
			}
			for i, item := range v {
				if err := subKey.SetStringValue(strconv.Itoa(i+1), item); err != nil {
					subKey.Close()
					return err
				}
			}
			subKey.Close()
		default:
			return fmt.Errorf("extension %s: unsupported settings value type for %q", extID, name)
		}
	}
	return nil
}

func (windowsAdaptor) Remove(b browser.Browser) error {
	keyPath := policyKeyPath(b)
	if keyPath == "" {
		return fmt.Errorf("windows adaptor: unsupported browser %q", b)
	}
	if err := registry.DeleteKey(registry.LOCAL_MACHINE, keyPath+`\ExtensionInstallForcelist`); err != nil && err != registry.ErrNotExist {
		return fmt.Errorf("removing forcelist key for %s: %w", b, err)
	}
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.ALL_ACCESS)
	if err == registry.ErrNotExist {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening policy key %s: %w", keyPath, err)
	}
	defer key.Close()
	for _, name := range []string{"IncognitoModeAvailability", "InPrivateModeAvailability", "DisablePrivateBrowsing", "BrowserGuestModeEnabled"} {
		if err := key.DeleteValue(name); err != nil && err != registry.ErrNotExist {
			return err
		}
	}
	return nil
}
