// Package browser defines the three browser targets the policy reconciler
// and platform adaptors dispatch on.
package browser

// Browser is one of the three supported targets.
type Browser string

const (
	Chrome  Browser = "chrome"
	Firefox Browser = "firefox"
	Edge    Browser = "edge"
)

// All lists the browsers in the fixed apply order the reconciler must
// respect: Chrome, then Firefox, then Edge.
var All = []Browser{Chrome, Firefox, Edge}

// Valid reports whether s names a supported browser.
func Valid(s string) bool {
	switch Browser(s) {
	case Chrome, Firefox, Edge:
		return true
	default:
		return false
	}
}

// ChromiumUpdateURL is the default forced-extension update URL for Chrome
// and Edge.
const ChromiumUpdateURL = "https://clients2.google.com/service/update2/crx"

// FirefoxInstallURL renders the default AMO latest-release install URL for
// a Firefox extension id.
func FirefoxInstallURL(id string) string {
	return "https://addons.mozilla.org/firefox/downloads/latest/" + id + "/latest.xpi"
}
