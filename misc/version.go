// Package misc keeps build time information.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// Set by linker.
var (
	version = "dev"
	gitHash = "unknown"
	appName = ""
)

// GetVersion returns program version as set at build time.
func GetVersion() string {
	return version
}

// GetGitHash returns source control revision program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name: either set at build time or derived from
// executable name.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}
