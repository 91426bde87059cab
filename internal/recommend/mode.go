package recommend

import (
	"fmt"
	"strings"

	types "github.com/yungbote/paperrec-backend/internal/domain"
)

type Mode string

const (
	ModePersonalized Mode = "personalized"
	ModePopular      Mode = "popular"
	// ModeAuto resolves to personalized when the caller has usable preferences, popular otherwise.
	ModeAuto Mode = "auto"
)

// ParseMode accepts the empty string as "unspecified".
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case ModePersonalized:
		return ModePersonalized, nil
	case ModePopular:
		return ModePopular, nil
	case ModeAuto:
		return ModeAuto, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
}

// RecommendationType is the ledger type written for results of mode m.
func (m Mode) RecommendationType() string {
	if m == ModePersonalized {
		return types.RecommendationTypeContentBased
	}
	return types.RecommendationTypePopular
}

// SelectMode resolves the requested mode into personalized or popular.
// Anonymous callers always get popular. An explicit personalized request never
// falls back: a missing profile or an empty preference set is reported instead.
func SelectMode(requested Mode, authenticated bool, profile *types.UserProfile) (Mode, error) {
	if !authenticated || requested == ModePopular {
		return ModePopular, nil
	}
	usable := profile != nil && len(profile.PreferredTags()) > 0
	switch requested {
	case ModeAuto:
		if usable {
			return ModePersonalized, nil
		}
		return ModePopular, nil
	case ModePersonalized:
		if profile == nil {
			return "", ErrProfileNotFound
		}
		if !usable {
			return "", ErrNoPreferences
		}
		return ModePersonalized, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, requested)
}
