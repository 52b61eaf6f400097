package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Consent reports whether analytics may be emitted.
type Consent interface {
	Granted() bool
}

// StaticConsent is a consent decision fixed at startup.
type StaticConsent bool

func (c StaticConsent) Granted() bool { return bool(c) }

// consentFile is the persisted tracking-consent preference.
type consentFile struct {
	TrackingConsent *bool `json:"tracking-consent"`
}

// LoadConsent reads a consent preference file. The file holds either a
// JSON object {"tracking-consent": bool} or a bare true/false. Without a
// recorded preference (no path, no file, no key, unparseable content)
// consent is not granted. A file that exists but cannot be read yields
// granted together with the read error; the returned value is usable
// either way.
func LoadConsent(path string) (StaticConsent, error) {
	if path == "" {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return true, fmt.Errorf("reading consent file: %w", err)
	}

	switch strings.TrimSpace(string(data)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	var f consentFile
	if err := json.Unmarshal(data, &f); err != nil {
		return false, fmt.Errorf("parsing consent file: %w", err)
	}
	if f.TrackingConsent == nil {
		return false, nil
	}
	return StaticConsent(*f.TrackingConsent), nil
}

// SaveConsent persists a consent preference in the format LoadConsent reads.
func SaveConsent(path string, granted bool) error {
	data, err := json.Marshal(consentFile{TrackingConsent: &granted})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing consent file: %w", err)
	}
	return nil
}
