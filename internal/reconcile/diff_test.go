package reconcile

import (
	"testing"

	"github.com/emosenkis/family-policy/internal/browser"
	"github.com/emosenkis/family-policy/internal/config"
	"github.com/emosenkis/family-policy/internal/state"
)

func TestDiffAddedRemovedUnchanged(t *testing.T) {
	doc := &config.PolicyDocument{
		Policies: []config.PolicyEntry{
			{Name: "a", Browsers: []browser.Browser{browser.Chrome}, Extensions: []config.ExtensionEntry{
				{Name: "kept", ID: config.SingleExtensionID("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")},
				{Name: "new", ID: config.SingleExtensionID("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")},
			}},
		},
	}
	prev := state.AppliedPolicies{
		Chrome: &state.BrowserState{Extensions: []string{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "cccccccccccccccccccccccccccccccc"}},
	}

	diffs, _ := Diff(doc, prev)
	if len(diffs) != 1 {
		t.Fatalf("expected one browser diff, got %d", len(diffs))
	}
	d := diffs[0]
	if len(d.Added) != 1 || d.Added[0] != "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb" {
		t.Errorf("Added = %v", d.Added)
	}
	if len(d.Removed) != 1 || d.Removed[0] != "cccccccccccccccccccccccccccccccc" {
		t.Errorf("Removed = %v", d.Removed)
	}
	if len(d.Unchanged) != 1 || d.Unchanged[0] != "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
		t.Errorf("Unchanged = %v", d.Unchanged)
	}
}

func TestDiffSettingChange(t *testing.T) {
	disable := true
	doc := &config.PolicyDocument{
		Policies: []config.PolicyEntry{
			{Name: "a", Browsers: []browser.Browser{browser.Chrome}, DisablePrivateMode: &disable},
		},
	}
	prev := state.AppliedPolicies{}

	_, changes := Diff(doc, prev)
	if len(changes) != 1 {
		t.Fatalf("expected one setting change, got %v", changes)
	}
	if changes[0].Setting != "disable_incognito" || changes[0].New == nil || !*changes[0].New {
		t.Errorf("unexpected change: %+v", changes[0])
	}
}

func TestDiffIsReadOnly(t *testing.T) {
	doc := chromeDoc()
	prev := state.AppliedPolicies{}
	_, _ = Diff(doc, prev)
	// Diff must not mutate doc or prev; re-run and compare results are stable.
	d1, _ := Diff(doc, prev)
	d2, _ := Diff(doc, prev)
	if len(d1) != len(d2) {
		t.Fatalf("diff is not stable across calls")
	}
}
