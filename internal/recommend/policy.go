// Package recommend holds the pure parts of the recommender: folding actions into
// preference profiles, choosing a mode and ranking candidate papers.
package recommend

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/paperrec-backend/internal/domain"
)

const (
	ReasonPersonalized = "matches your interest tags"
	ReasonPopular      = "popular paper recommendation"
)

// Policy holds the tunable parts of profile building and ranking.
type Policy struct {
	// PreferenceActions are the action types that union paper tags into a profile.
	PreferenceActions []string `yaml:"preference_actions"`
	DefaultLimit      int      `yaml:"default_limit"`
	MaxLimit          int      `yaml:"max_limit"`
	// DefaultMode is used when an authenticated caller does not ask for one.
	DefaultMode        Mode   `yaml:"default_mode"`
	PersonalizedReason string `yaml:"personalized_reason"`
	PopularReason      string `yaml:"popular_reason"`
}

func DefaultPolicy() Policy {
	return Policy{
		PreferenceActions:  []string{types.ActionLike},
		DefaultLimit:       10,
		MaxLimit:           50,
		DefaultMode:        ModePersonalized,
		PersonalizedReason: ReasonPersonalized,
		PopularReason:      ReasonPopular,
	}
}

// LoadPolicy reads a YAML policy file over the defaults. An empty path returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading policy: %w", err)
	}
	return parsePolicy(data)
}

func parsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return DefaultPolicy(), fmt.Errorf("parsing policy: %w", err)
	}
	return p, p.Validate()
}

func (p Policy) Validate() error {
	for _, a := range p.PreferenceActions {
		if !validActionType(a) {
			return fmt.Errorf("%w: %q", ErrInvalidActionType, a)
		}
	}
	if p.MaxLimit < 1 {
		return fmt.Errorf("max_limit must be positive, got %d", p.MaxLimit)
	}
	if p.DefaultLimit < 1 || p.DefaultLimit > p.MaxLimit {
		return fmt.Errorf("default_limit must be in 1..%d, got %d", p.MaxLimit, p.DefaultLimit)
	}
	if _, err := ParseMode(string(p.DefaultMode)); err != nil {
		return err
	}
	return nil
}

// WithFavorite returns a copy where favorite actions also update profiles.
func (p Policy) WithFavorite() Policy {
	if p.Mutates(types.ActionFavorite) {
		return p
	}
	out := p
	out.PreferenceActions = append(append([]string{}, p.PreferenceActions...), types.ActionFavorite)
	return out
}

// Mutates reports whether actionType may change a profile's preferred tags.
func (p Policy) Mutates(actionType string) bool {
	for _, a := range p.PreferenceActions {
		if a == actionType {
			return true
		}
	}
	return false
}

// ResolveLimit applies the default to 0 and rejects anything outside 1..MaxLimit.
func (p Policy) ResolveLimit(limit int) (int, error) {
	if limit == 0 {
		return p.DefaultLimit, nil
	}
	if limit < 1 || limit > p.MaxLimit {
		return 0, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidLimit, limit, p.MaxLimit)
	}
	return limit, nil
}

func (p Policy) reason(m Mode) string {
	if m == ModePersonalized {
		if p.PersonalizedReason != "" {
			return p.PersonalizedReason
		}
		return ReasonPersonalized
	}
	if p.PopularReason != "" {
		return p.PopularReason
	}
	return ReasonPopular
}

func validActionType(a string) bool {
	for _, t := range types.ActionTypes {
		if t == a {
			return true
		}
	}
	return false
}
