package platform

import (
	"fmt"
	"runtime"
)

// AdaptorForOS returns the policy-surface adaptor for runtime.GOOS.
func AdaptorForOS() (Adaptor, error) {
	switch runtime.GOOS {
	case "windows":
		return NewWindowsAdaptor(), nil
	case "darwin":
		return NewMacOSAdaptor(), nil
	case "linux":
		return NewLinuxAdaptor(), nil
	default:
		return nil, fmt.Errorf("unsupported operating system %q", runtime.GOOS)
	}
}
