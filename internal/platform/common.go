package platform

// ForcelistEntry renders the "<id>;<update_url>" encoding shared by the
// Windows registry and macOS plist ExtensionInstallForcelist
// representations.
func ForcelistEntry(e ExtensionInstall) string {
	return e.ID + ";" + e.URL
}
