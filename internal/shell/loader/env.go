package loader

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/subosito/gotenv"
)

// EnvFiles are the environment override files read, in precedence order:
// a later file wins over an earlier one for the same key.
var EnvFiles = []string{".env", ".dev.vars"}

// =============================================================================
// Environment Overrides
// =============================================================================

// LoadEnv reads every file in EnvFiles from dir and merges them. Missing files
// are skipped. The process environment is neither read nor modified.
func LoadEnv(dir string) (map[string]string, error) {
	paths := make([]string, 0, len(EnvFiles))
	for _, name := range EnvFiles {
		paths = append(paths, filepath.Join(dir, name))
	}
	return LoadEnvFiles(paths...)
}

// LoadEnvFiles merges the given env files in order, skipping missing ones.
func LoadEnvFiles(paths ...string) (map[string]string, error) {
	merged := make(map[string]string)

	for _, path := range paths {
		env, err := readEnvFile(path)
		if err != nil {
			return nil, err
		}
		for key, value := range env {
			merged[key] = value
		}
	}

	return merged, nil
}

func readEnvFile(path string) (gotenv.Env, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, NewLoadError(path, "failed to open environment file", errors.Join(ErrEnvFile, err))
	}
	defer f.Close()

	env, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, NewLoadError(path, err.Error(), ErrEnvFile)
	}
	return env, nil
}
