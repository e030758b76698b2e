package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the optional project configuration file.
const ConfigFileName = "catcare.yaml"

// FindRoot looks upwards from startDir for a data directory, marked by a
// .catcare directory or a catcare.yaml file, and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ".catcare") || hasFile(dir, ConfigFileName) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
