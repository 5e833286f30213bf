package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// dotenvFile is read from the working directory.
const dotenvFile = ".env"

var dotenv struct {
	sync.Mutex
	values map[string]string
	err    error
	loaded bool
}

// readDotenv parses .env once per process. A missing file yields an empty
// map and no error; a malformed one yields an empty map and the parse error.
func readDotenv() (map[string]string, error) {
	dotenv.Lock()
	defer dotenv.Unlock()

	if !dotenv.loaded {
		dotenv.loaded = true
		values, err := godotenv.Read(dotenvFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			values, err = map[string]string{}, nil
		case err != nil:
			values, err = map[string]string{}, fmt.Errorf("reading %s: %w", dotenvFile, err)
		}
		dotenv.values, dotenv.err = values, err
	}
	return dotenv.values, dotenv.err
}

// loadDotenv is readDotenv for client lookups, where a bad .env only means
// there is nothing to fall back on.
func loadDotenv() map[string]string {
	values, _ := readDotenv()
	return values
}

// resetDotenv forgets the parsed file. Used by tests.
func resetDotenv() {
	dotenv.Lock()
	defer dotenv.Unlock()
	dotenv.values, dotenv.err, dotenv.loaded = nil, nil, false
}

// getenv returns key from the environment, else from .env.
func getenv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return loadDotenv()[key]
}

// exportDotenv copies .env entries into the process environment where the
// environment has no value for them, so the server config (which reads
// CATCHUP_*, PORT, CLAUDE_API_KEY and GEMINI_API_KEY from the environment)
// sees them too.
func exportDotenv() error {
	values, err := readDotenv()
	if err != nil {
		return err
	}
	for k, v := range values {
		if os.Getenv(k) != "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("setting %s from %s: %w", k, dotenvFile, err)
		}
	}
	return nil
}
