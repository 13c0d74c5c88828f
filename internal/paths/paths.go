package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	programName = "uberjni"

	// Manifest file names probed in the working directory, in order.
	manifestYAML = "uberjni.yaml"
	manifestYML  = "uberjni.yml"
	manifestTOML = "uberjni.toml"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the cache directory.
//
//	Linux:   $XDG_CACHE_HOME/uberjni or ~/.cache/uberjni
//	macOS:   ~/Library/Caches/uberjni
func Cache() string {
	return filepath.Join(xdg.CacheHome, programName)
}

// Directory holding prebuilt runtime files for one platform of a component.
//
// Cross-built binaries are dropped here by whatever transfers them from the
// machine that built them.
//
//	Linux:   $XDG_CACHE_HOME/uberjni/prebuilt/<component>/<arch>
//	macOS:   ~/Library/Caches/uberjni/prebuilt/<component>/<arch>
func Prebuilt(component, architecture string) string {
	return filepath.Join(Cache(), "prebuilt", component, architecture)
}

// Path to the user-wide manifest.
//
//	Linux:   $XDG_CONFIG_HOME/uberjni/uberjni.yaml
//	macOS:   ~/Library/Application Support/uberjni/uberjni.yaml
func UserManifest() string {
	return filepath.Join(xdg.ConfigHome, programName, manifestYAML)
}

// Returns the manifest to load when none is given.
//
// The first of uberjni.yaml, uberjni.yml, and uberjni.toml found in dir
// wins. Without any, the user-wide manifest is returned whether or not it
// exists, so the caller reports a useful path.
func Manifest(dir string) string {
	for _, name := range []string{manifestYAML, manifestYML, manifestTOML} {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return UserManifest()
}
