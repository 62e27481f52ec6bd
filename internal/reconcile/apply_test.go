package reconcile

import (
	"errors"
	"testing"

	"github.com/emosenkis/family-policy/internal/browser"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/platform"
	"github.com/emosenkis/family-policy/internal/state"
)

type fakeAdaptor struct {
	applied map[browser.Browser]platform.Surface
	removed map[browser.Browser]bool
	failOn  browser.Browser
}

func newFakeAdaptor() *fakeAdaptor {
	return &fakeAdaptor{applied: map[browser.Browser]platform.Surface{}, removed: map[browser.Browser]bool{}}
}

func (f *fakeAdaptor) Apply(b browser.Browser, s platform.Surface) error {
	if b == f.failOn {
		return errors.New("simulated write failure")
	}
	f.applied[b] = s
	return nil
}

func (f *fakeAdaptor) Remove(b browser.Browser) error {
	if b == f.failOn {
		return errors.New("simulated remove failure")
	}
	f.removed[b] = true
	return nil
}

func chromeDoc() *config.PolicyDocument {
	return &config.PolicyDocument{
		Policies: []config.PolicyEntry{
			{
				Name:     "browsers",
				Browsers: []browser.Browser{browser.Chrome},
				Extensions: []config.ExtensionEntry{
					{Name: "ext", ID: config.SingleExtensionID("ddkjiahejlhfcafbddmgiahcphecmpfh")},
				},
			},
		},
	}
}

func TestApplyColdInstall(t *testing.T) {
	adaptor := newFakeAdaptor()
	content := []byte("irrelevant")
	result := Apply(chromeDoc(), content, "", state.AppliedPolicies{}, adaptor, false)

	if result.Unchanged {
		t.Fatalf("expected not unchanged on first apply")
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	bs := result.AppliedPolicies.Get(browser.Chrome)
	if bs == nil || len(bs.Extensions) != 1 || bs.Extensions[0] != "ddkjiahejlhfcafbddmgiahcphecmpfh" {
		t.Fatalf("unexpected applied chrome state: %+v", bs)
	}
	surface := adaptor.applied[browser.Chrome]
	if len(surface.Extensions) != 1 || surface.Extensions[0].URL != browser.ChromiumUpdateURL {
		t.Fatalf("unexpected surface: %+v", surface)
	}
}

func TestApplyUnchangedShortCircuits(t *testing.T) {
	adaptor := newFakeAdaptor()
	content := []byte("same content")
	hash := Hash(content)
	result := Apply(chromeDoc(), content, hash, state.AppliedPolicies{}, adaptor, false)
	if !result.Unchanged {
		t.Fatalf("expected unchanged when hash matches")
	}
	if len(adaptor.applied) != 0 {
		t.Fatalf("expected no surface writes on unchanged apply")
	}
}

func TestApplyDryRunNeverWrites(t *testing.T) {
	adaptor := newFakeAdaptor()
	result := Apply(chromeDoc(), []byte("x"), "", state.AppliedPolicies{}, adaptor, true)
	if len(adaptor.applied) != 0 {
		t.Fatalf("dry run must not touch adaptor")
	}
	if result.AppliedPolicies.Get(browser.Chrome) == nil {
		t.Fatalf("dry run should still report the would-be state")
	}
}

func TestApplyPartialFailurePersistsSuccessfulSubset(t *testing.T) {
	doc := &config.PolicyDocument{
		Policies: []config.PolicyEntry{
			{Name: "a", Browsers: []browser.Browser{browser.Chrome}, Extensions: []config.ExtensionEntry{
				{Name: "e1", ID: config.SingleExtensionID("ddkjiahejlhfcafbddmgiahcphecmpfh")},
			}},
			{Name: "b", Browsers: []browser.Browser{browser.Edge}, Extensions: []config.ExtensionEntry{
				{Name: "e2", ID: config.SingleExtensionID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")},
			}},
		},
	}
	adaptor := newFakeAdaptor()
	adaptor.failOn = browser.Edge

	result := Apply(doc, []byte("x"), "", state.AppliedPolicies{}, adaptor, false)
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if result.AppliedPolicies.Get(browser.Chrome) == nil {
		t.Fatalf("expected chrome surface to persist despite edge failure")
	}
	if result.AppliedPolicies.Get(browser.Edge) != nil {
		t.Fatalf("expected edge surface absent after failed apply")
	}
}

func TestApplyRemovesBrowserDroppedFromNewDocument(t *testing.T) {
	prevApplied := state.AppliedPolicies{
		Chrome: &state.BrowserState{Extensions: []string{"ddkjiahejlhfcafbddmgiahcphecmpfh"}},
	}
	adaptor := newFakeAdaptor()

	// chromeDoc only targets Chrome, so Edge (previously applied) must be
	// removed even though the new document never mentions it.
	prevApplied.Edge = &state.BrowserState{Extensions: []string{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}}

	result := Apply(chromeDoc(), []byte("x"), "", prevApplied, adaptor, false)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !adaptor.removed[browser.Edge] {
		t.Fatalf("expected dropped edge surface to be removed")
	}
	if result.AppliedPolicies.Get(browser.Edge) != nil {
		t.Fatalf("expected edge absent from applied policies after removal")
	}
	if result.AppliedPolicies.Get(browser.Chrome) == nil {
		t.Fatalf("expected chrome to remain applied")
	}
}

func TestApplyDryRunDoesNotRemoveDroppedBrowser(t *testing.T) {
	prevApplied := state.AppliedPolicies{
		Edge: &state.BrowserState{Extensions: []string{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}},
	}
	adaptor := newFakeAdaptor()

	Apply(chromeDoc(), []byte("x"), "", prevApplied, adaptor, true)
	if adaptor.removed[browser.Edge] {
		t.Fatalf("dry run must not remove any surface")
	}
}

func TestUninstallAggregatesErrorsAndContinues(t *testing.T) {
	applied := state.AppliedPolicies{
		Chrome: &state.BrowserState{Extensions: []string{"a"}},
		Edge:   &state.BrowserState{Extensions: []string{"b"}},
	}
	adaptor := newFakeAdaptor()
	adaptor.failOn = browser.Chrome

	errs := Uninstall(applied, adaptor)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if !adaptor.removed[browser.Edge] {
		t.Fatalf("expected edge removal to still be attempted")
	}
}

func TestForceInstalledFalseExcludesExtension(t *testing.T) {
	notForced := false
	doc := &config.PolicyDocument{
		Policies: []config.PolicyEntry{
			{Name: "a", Browsers: []browser.Browser{browser.Chrome}, Extensions: []config.ExtensionEntry{
				{Name: "e1", ID: config.SingleExtensionID("ddkjiahejlhfcafbddmgiahcphecmpfh"), ForceInstalled: &notForced},
			}},
		},
	}
	surfaces := buildSurfaces(doc)
	if len(surfaces[browser.Chrome].Extensions) != 0 {
		t.Fatalf("expected extension excluded when force_installed=false")
	}
}
