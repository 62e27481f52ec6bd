//go:build !windows

package platform

import (
	"fmt"

	"github.com/emosenkis/family-policy/internal/browser"
)

// windowsAdaptor is unreachable on non-Windows builds; NewWindowsAdaptor
// only gets called when runtime.GOOS == "windows".
type windowsAdaptor struct{}

// NewWindowsAdaptor returns an adaptor that always fails, for non-Windows
// builds that reference it only through dead code paths.
func NewWindowsAdaptor() Adaptor { return windowsAdaptor{} }

func (windowsAdaptor) Apply(b browser.Browser, surface Surface) error {
	return fmt.Errorf("windows registry adaptor is unavailable on this platform")
}

func (windowsAdaptor) Remove(b browser.Browser) error {
	return fmt.Errorf("windows registry adaptor is unavailable on this platform")
}
