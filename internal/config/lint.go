package config

import (
	"errors"
	"fmt"

	"github.com/ariel-frischer/envinit/internal/schema"
	"github.com/ariel-frischer/envinit/internal/validation"
	"github.com/ariel-frischer/envinit/internal/validators"
)

// Lint checks raw against s and returns the problems as "key: message"
// lines, the format used when editing a generated template. An empty
// result means the config is valid.
func Lint(raw map[string]any, s *schema.Schema, reg *validators.Registry) []string {
	_, err := Validate(raw, s, reg)
	if err == nil {
		return nil
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		lines := make([]string, len(verr.Errors))
		for i, fe := range verr.Errors {
			lines[i] = fmt.Sprintf("%s: %s", fe.Key, fe.Message)
		}
		return lines
	}

	var collision *CollisionError
	if errors.As(err, &collision) {
		lines := make([]string, len(collision.Collisions))
		for i, c := range collision.Collisions {
			lines[i] = fmt.Sprintf("%s: ambiguous, produced by keys %v", c.Key, c.Originals)
		}
		return lines
	}
	return []string{err.Error()}
}
