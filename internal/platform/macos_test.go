package platform

import (
	"os"
	"testing"

	"howett.net/plist"

	"github.com/emosenkis/family-policy/internal/browser"
)

func withManagedPreferencesDir(t *testing.T) {
	t.Helper()
	orig := managedPreferencesDir
	managedPreferencesDir = t.TempDir()
	t.Cleanup(func() { managedPreferencesDir = orig })
}

func readPlistFile(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading plist %s: %v", path, err)
	}
	var dict map[string]interface{}
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		t.Fatalf("unmarshalling plist %s: %v", path, err)
	}
	return dict
}

func TestMacOSAdaptorApplyPreservesUnrelatedKeys(t *testing.T) {
	withManagedPreferencesDir(t)
	path := plistPath(bundleID(browser.Chrome))
	existing := map[string]interface{}{"SomeUnrelatedPolicy": true}
	if err := writePlistDict(path, existing); err != nil {
		t.Fatalf("seeding plist: %v", err)
	}

	a := NewMacOSAdaptor()
	disable := true
	surface := Surface{
		Extensions:         []ExtensionInstall{{ID: "abc", URL: "https://example.com/u"}},
		DisablePrivateMode: &disable,
	}
	if err := a.Apply(browser.Chrome, surface); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	dict := readPlistFile(t, path)
	if dict["SomeUnrelatedPolicy"] != true {
		t.Errorf("unrelated key lost: %+v", dict)
	}
	list, ok := dict["ExtensionInstallForcelist"].([]interface{})
	if !ok || len(list) != 1 || list[0] != "abc;https://example.com/u" {
		t.Errorf("forcelist = %+v", dict["ExtensionInstallForcelist"])
	}
}

func TestMacOSAdaptorApplyEmptySurfaceRemovesManagedKeysOnly(t *testing.T) {
	withManagedPreferencesDir(t)
	path := plistPath(bundleID(browser.Edge))
	if err := writePlistDict(path, map[string]interface{}{"Keep": "me"}); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	a := NewMacOSAdaptor()
	if err := a.Apply(browser.Edge, Surface{}); err != nil {
		t.Fatalf("Apply empty: %v", err)
	}

	dict := readPlistFile(t, path)
	if dict["Keep"] != "me" {
		t.Errorf("expected unrelated key preserved after empty apply, got %+v", dict)
	}
}

func TestMacOSAdaptorExtensionSettingsPlist(t *testing.T) {
	withManagedPreferencesDir(t)
	a := NewMacOSAdaptor()
	surface := Surface{
		Extensions: []ExtensionInstall{{ID: "ext1", URL: "https://example.com/u"}},
		ExtensionSettings: map[string]map[string]interface{}{
			"ext1": {"allowedHosts": []interface{}{"example.com"}},
		},
	}
	if err := a.Apply(browser.Chrome, surface); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	settingsPath := managedPreferencesDir + "/" + bundleID(browser.Chrome) + ".extensions.ext1.plist"
	dict := readPlistFile(t, settingsPath)
	if _, ok := dict["allowedHosts"]; !ok {
		t.Errorf("missing allowedHosts key: %+v", dict)
	}

	if err := RemoveExtensionSettingsPlist(browser.Chrome, "ext1"); err != nil {
		t.Fatalf("RemoveExtensionSettingsPlist: %v", err)
	}
	if _, err := os.Stat(settingsPath); !os.IsNotExist(err) {
		t.Errorf("expected settings plist removed, stat err = %v", err)
	}
}

func TestMacOSAdaptorRemoveNotFoundIsSuccess(t *testing.T) {
	withManagedPreferencesDir(t)
	a := NewMacOSAdaptor()
	if err := a.Remove(browser.Firefox); err != nil {
		t.Errorf("Remove on missing plist: %v", err)
	}
}

func TestBundleIDUnknownBrowser(t *testing.T) {
	if id := bundleID(browser.Browser("opera")); id != "" {
		t.Errorf("expected empty bundle id, got %q", id)
	}
}
