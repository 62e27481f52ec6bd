// Package config holds the three on-disk/remote schemas the agent reads:
// the remote PolicyDocument, the local AgentConfig (TOML), and the local
// TimeLimitsConfig (YAML) — plus their load/validate routines.
package config

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/emosenkis/family-policy/internal/browser"
)

// PolicyDocument is the declarative, versioned document fetched from the
// remote source. It is an ordered sequence of policy entries.
type PolicyDocument struct {
	Policies []PolicyEntry `yaml:"policies"`
}

// PolicyEntry targets a subset of browsers and optionally sets two privacy
// flags plus a list of extension entries.
type PolicyEntry struct {
	Name               string            `yaml:"name"`
	Browsers           []browser.Browser `yaml:"browsers"`
	DisablePrivateMode *bool             `yaml:"disable_private_mode,omitempty"`
	DisableGuestMode   *bool             `yaml:"disable_guest_mode,omitempty"`
	Extensions         []ExtensionEntry  `yaml:"extensions"`
}

// ExtensionEntry carries a name, an id (single or per-browser), an optional
// force-install flag, and a free-form settings map.
type ExtensionEntry struct {
	Name           string                 `yaml:"name"`
	ID             ExtensionID            `yaml:"id"`
	ForceInstalled *bool                  `yaml:"force_installed,omitempty"`
	Settings       map[string]interface{} `yaml:"settings,omitempty"`
}

// ExtensionID models the spec §9 tagged sum type: either one id shared by
// every targeted browser, or a per-browser mapping. It is intentionally
// not flattened into three optional fields — the shape matters for
// validation errors (a missing per-browser id must name which browser).
type ExtensionID struct {
	single    string
	byBrowser map[browser.Browser]string
}

// SingleExtensionID builds an ExtensionID shared across all browsers.
func SingleExtensionID(id string) ExtensionID {
	return ExtensionID{single: id}
}

// ByBrowserExtensionID builds an ExtensionID with one id per browser.
func ByBrowserExtensionID(m map[browser.Browser]string) ExtensionID {
	return ExtensionID{byBrowser: m}
}

// GetID returns the identifier that applies to b, if any.
func (e ExtensionID) GetID(b browser.Browser) (string, bool) {
	if e.byBrowser != nil {
		id, ok := e.byBrowser[b]
		return id, ok && id != ""
	}
	return e.single, e.single != ""
}

// IsByBrowser reports whether this id was declared as a per-browser map.
func (e ExtensionID) IsByBrowser() bool { return e.byBrowser != nil }

// UnmarshalYAML accepts either a bare scalar string or a browser→id mapping.
func (e *ExtensionID) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*e = ExtensionID{single: s}
		return nil
	case yaml.MappingNode:
		var m map[browser.Browser]string
		if err := value.Decode(&m); err != nil {
			return err
		}
		*e = ExtensionID{byBrowser: m}
		return nil
	default:
		return fmt.Errorf("extension id must be a string or a browser map, got kind %v", value.Kind)
	}
}

// MarshalYAML renders the tagged id back to its scalar or mapping form.
func (e ExtensionID) MarshalYAML() (interface{}, error) {
	if e.byBrowser != nil {
		return e.byBrowser, nil
	}
	return e.single, nil
}

var chromiumIDPattern = regexp.MustCompile(`^[a-z0-9]{32}$`)

// Validate enforces the load-time invariants from spec.md §3: every entry
// targets at least one browser, every targeted (entry, browser) pair
// resolves to a non-empty id, Chromium ids are 32 lowercase-alphanumeric
// characters, Firefox ids need only be non-empty, and the entry list
// itself is non-empty.
func (d *PolicyDocument) Validate() error {
	if len(d.Policies) == 0 {
		return fmt.Errorf("policy document must contain at least one policy entry")
	}
	for _, entry := range d.Policies {
		if len(entry.Browsers) == 0 {
			return fmt.Errorf("policy entry %q: must target at least one browser", entry.Name)
		}
		for _, b := range entry.Browsers {
			if !browser.Valid(string(b)) {
				return fmt.Errorf("policy entry %q: unknown browser %q", entry.Name, b)
			}
		}
		for _, ext := range entry.Extensions {
			for _, b := range entry.Browsers {
				id, ok := ext.ID.GetID(b)
				if !ok {
					return fmt.Errorf("policy entry %q extension %q: missing id for browser %q", entry.Name, ext.Name, b)
				}
				if (b == browser.Chrome || b == browser.Edge) && !chromiumIDPattern.MatchString(id) {
					return fmt.Errorf("policy entry %q extension %q: id %q for browser %q must be 32 lowercase alphanumeric characters", entry.Name, ext.Name, id, b)
				}
			}
		}
	}
	return nil
}

// ParsePolicyDocument unmarshals and validates remote YAML content.
func ParsePolicyDocument(content []byte) (*PolicyDocument, error) {
	var doc PolicyDocument
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parsing policy document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy document: %w", err)
	}
	return &doc, nil
}
