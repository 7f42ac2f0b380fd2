// Package credential stores the inference API key in a local dotenv file.
//
// The store is a thin wrapper over a single KEY=value line in .env.
// Reads go through github.com/joho/godotenv so quoted and exported forms
// are understood, with the process environment as a fallback. Writes are
// line-level rewrites of the file so that unrelated entries and comments
// survive a set or remove untouched.
//
// There is no encryption and no locking: the intended usage is a single
// user running a single process, and the 0600 file mode is advisory only.
package credential

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mmr-tortoise/receipted/internal/model"
)

// DefaultKeyName is the variable name the API key is stored under, both
// in the dotenv file and in the process environment.
const DefaultKeyName = "GROQ_API_KEY"

// storeFileMode is used when (re)writing the dotenv file. The file holds
// a secret, so it is created owner-readable only.
const storeFileMode = 0600

// Store reads and writes the API key in a dotenv file.
type Store struct {
	// Path is the dotenv file location, typically ".env".
	Path string

	// KeyName is the variable name holding the credential.
	KeyName string
}

// NewStore creates a Store for the given dotenv file path using the
// default key name.
func NewStore(path string) *Store {
	return &Store{Path: path, KeyName: DefaultKeyName}
}

// Load returns the stored API key. The dotenv file takes precedence;
// when the file is absent or does not define the key, the process
// environment is consulted. An empty value counts as absent.
//
// Returns model.ErrMissingCredential when no key is found anywhere.
func (s *Store) Load() (string, error) {
	// godotenv.Read parses without mutating the process environment,
	// handling quoting and "export KEY=..." forms. A read error just
	// means the file is absent or unreadable — fall through to the
	// environment in that case.
	if vars, err := godotenv.Read(s.Path); err == nil {
		if value := vars[s.KeyName]; value != "" {
			return value, nil
		}
	}

	if value := os.Getenv(s.KeyName); value != "" {
		return value, nil
	}

	return "", model.ErrMissingCredential
}

// View returns the stored API key in masked form for display.
// The full value is never returned: keys longer than 8 characters show
// the first and last 4 with the middle starred out, shorter keys are
// fully starred.
func (s *Store) View() (string, error) {
	value, err := s.Load()
	if err != nil {
		return "", err
	}
	return Mask(value), nil
}

// Mask produces the display form of a secret. Exported so the CLI can
// mask values it already holds (e.g., echoing back a freshly set key).
func Mask(secret string) string {
	if len(secret) > 8 {
		return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
	}
	return strings.Repeat("*", len(secret))
}

// Set writes or overwrites the API key line in the dotenv file.
// The key line is written first, followed by every unrelated line of the
// existing file verbatim, so comments and other variables survive.
// An empty value is rejected — use Remove to clear the key.
func (s *Store) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("API key must not be empty")
	}

	others := s.readOtherLines()

	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s\n", s.KeyName, value)
	for _, line := range others {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if err := os.WriteFile(s.Path, []byte(b.String()), storeFileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	return nil
}

// Remove deletes the API key line from the dotenv file, keeping every
// other line. Removing a key that is not present — or operating on a
// file that does not exist — is a no-op, not an error.
func (s *Store) Remove() error {
	if _, err := os.Stat(s.Path); os.IsNotExist(err) {
		return nil
	}

	others := s.readOtherLines()

	var b strings.Builder
	for _, line := range others {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if err := os.WriteFile(s.Path, []byte(b.String()), storeFileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	return nil
}

// readOtherLines returns every line of the dotenv file that does not
// define the credential, with trailing blank lines dropped. A missing
// or unreadable file yields no lines.
func (s *Store) readOtherLines() []string {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if s.isKeyLine(line) {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// isKeyLine reports whether a raw dotenv line defines the credential,
// covering both "KEY=..." and "export KEY=..." forms.
func (s *Store) isKeyLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "export ")
	return strings.HasPrefix(trimmed, s.KeyName+"=")
}
