package recommend

import (
	"fmt"

	"github.com/yungbote/paperrec-backend/internal/platform/apierr"
)

var (
	ErrProfileNotFound = fmt.Errorf("%w: user profile not found", apierr.ErrNotFound)
	ErrNoPreferences   = fmt.Errorf("%w: user profile has no preferred tags", apierr.ErrInvalidArgument)
	ErrTagNotFound     = fmt.Errorf("%w: tag not found", apierr.ErrNotFound)
	ErrPaperNotFound   = fmt.Errorf("%w: paper not found", apierr.ErrNotFound)
	ErrNoRecords       = fmt.Errorf("%w: no recommendation records", apierr.ErrNotFound)

	ErrRecommendationNotFound = fmt.Errorf("%w: recommendation not found", apierr.ErrNotFound)

	ErrInvalidLimit       = fmt.Errorf("%w: limit out of range", apierr.ErrInvalidArgument)
	ErrInvalidMode        = fmt.Errorf("%w: unknown recommendation mode", apierr.ErrInvalidArgument)
	ErrInvalidActionValue = fmt.Errorf("%w: action_value must be greater than zero", apierr.ErrInvalidArgument)
	ErrInvalidActionType  = fmt.Errorf("%w: unknown action_type", apierr.ErrInvalidArgument)
	ErrInvalidStatus      = fmt.Errorf("%w: unknown recommendation status", apierr.ErrInvalidArgument)
	ErrInvalidType        = fmt.Errorf("%w: unknown recommendation type", apierr.ErrInvalidArgument)
	ErrInvalidPage        = fmt.Errorf("%w: page out of range", apierr.ErrInvalidArgument)
	ErrInvalidTimeRange   = fmt.Errorf("%w: time range start is after its end", apierr.ErrInvalidArgument)

	// ErrProfileConflict is returned when a profile update keeps losing the optimistic-lock race.
	ErrProfileConflict = fmt.Errorf("%w: profile was modified concurrently", apierr.ErrConflict)
)
