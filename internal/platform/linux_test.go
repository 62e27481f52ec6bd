package platform

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/emosenkis/family-policy/internal/browser"
)

func withPolicyRoot(t *testing.T, fn func()) {
	t.Helper()
	orig := policyRootOverride
	dir := t.TempDir()
	policyRootOverride = dir
	t.Cleanup(func() { policyRootOverride = orig })
	fn()
}

func TestLinuxAdaptorApplyChrome(t *testing.T) {
	withPolicyRoot(t, func() {
		a := NewLinuxAdaptor()
		disable := true
		surface := Surface{
			Extensions:         []ExtensionInstall{{ID: "abc", URL: "https://example.com/update.xml"}},
			DisablePrivateMode: &disable,
		}
		if err := a.Apply(browser.Chrome, surface); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		path, _ := policyPath(browser.Chrome)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading policy file: %v", err)
		}
		var policy chromiumPolicy
		if err := json.Unmarshal(data, &policy); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(policy.ExtensionInstallForcelist) != 1 || policy.ExtensionInstallForcelist[0] != "abc;https://example.com/update.xml" {
			t.Errorf("forcelist = %v", policy.ExtensionInstallForcelist)
		}
		if policy.IncognitoModeAvailability == nil || *policy.IncognitoModeAvailability != 1 {
			t.Errorf("IncognitoModeAvailability = %v", policy.IncognitoModeAvailability)
		}
	})
}

func TestLinuxAdaptorApplyFirefox(t *testing.T) {
	withPolicyRoot(t, func() {
		a := NewLinuxAdaptor()
		surface := Surface{
			Extensions: []ExtensionInstall{{ID: "ext@example.com", URL: "https://example.com/ext.xpi"}},
		}
		if err := a.Apply(browser.Firefox, surface); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		path, _ := policyPath(browser.Firefox)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading policy file: %v", err)
		}
		var doc firefoxDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		setting, ok := doc.Policies.ExtensionSettings["ext@example.com"]
		if !ok {
			t.Fatalf("missing extension setting")
		}
		if setting.InstallationMode != "force_installed" || setting.InstallURL != "https://example.com/ext.xpi" {
			t.Errorf("setting = %+v", setting)
		}
	})
}

func TestLinuxAdaptorApplyEmptySurfaceRemoves(t *testing.T) {
	withPolicyRoot(t, func() {
		a := NewLinuxAdaptor()
		surface := Surface{Extensions: []ExtensionInstall{{ID: "abc", URL: "https://example.com/u"}}}
		if err := a.Apply(browser.Chrome, surface); err != nil {
			t.Fatalf("Apply: %v", err)
		}
		path, _ := policyPath(browser.Chrome)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected policy file to exist: %v", err)
		}

		if err := a.Apply(browser.Chrome, Surface{}); err != nil {
			t.Fatalf("Apply empty: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected policy file removed, stat err = %v", err)
		}
	})
}

func TestLinuxAdaptorRemoveNotFoundIsSuccess(t *testing.T) {
	withPolicyRoot(t, func() {
		a := NewLinuxAdaptor()
		if err := a.Remove(browser.Edge); err != nil {
			t.Errorf("Remove on missing file: %v", err)
		}
	})
}

func TestForcelistEntry(t *testing.T) {
	got := ForcelistEntry(ExtensionInstall{ID: "id1", URL: "https://u"})
	if got != "id1;https://u" {
		t.Errorf("ForcelistEntry = %q", got)
	}
}

func TestPolicyPathUnknownBrowser(t *testing.T) {
	if path, _ := policyPath(browser.Browser("opera")); path != "" {
		t.Errorf("expected empty path for unknown browser, got %q", path)
	}
	if filepath.Base("x") == "" {
		t.Fatal("sanity")
	}
}
