package recommend

import (
	"slices"
	"time"

	types "github.com/yungbote/paperrec-backend/internal/domain"
)

type Outcome int

const (
	// OutcomeTouched means only LastUpdated moved.
	OutcomeTouched Outcome = iota
	// OutcomeMutated means at least one tag joined the preferred set.
	OutcomeMutated
	// OutcomePaperMissing means the acted-on paper is not in the catalog; nothing changed.
	OutcomePaperMissing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMutated:
		return "mutated"
	case OutcomePaperMissing:
		return "paper_missing"
	default:
		return "touched"
	}
}

type ApplyResult struct {
	Profile *types.UserProfile
	Created bool
	Outcome Outcome
	// Added holds the tag ids that were not preferred before, ascending.
	Added []uint
}

// Changed reports whether the profile needs to be written back.
func (r ApplyResult) Changed() bool {
	return r.Created || r.Outcome != OutcomePaperMissing
}

// ApplyAction folds one action into profile. profile may be nil, in which case a
// new empty profile for the action's user is returned with Created set.
// paperFound=false leaves the profile untouched; the caller decides how to report it.
// The input profile is never modified; a copy is returned.
func ApplyAction(profile *types.UserProfile, action *types.UserAction, paperTags []uint, paperFound bool, policy Policy, now time.Time) ApplyResult {
	at := action.OccurredAt
	if at.IsZero() {
		at = now
	}
	at = at.UTC()

	res := ApplyResult{}
	if profile == nil {
		res.Created = true
		res.Profile = &types.UserProfile{UserID: action.UserID, LastUpdated: at}
		res.Profile.SetPreferredTags(nil)
	} else {
		cp := *profile
		cp.SetPreferredTags(profile.PreferredTags())
		res.Profile = &cp
	}

	if !paperFound {
		res.Outcome = OutcomePaperMissing
		return res
	}

	res.Profile.LastUpdated = at
	res.Outcome = OutcomeTouched
	if !policy.Mutates(action.ActionType) {
		return res
	}

	current := res.Profile.PreferredTags()
	have := make(map[uint]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}
	for _, id := range paperTags {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		current = append(current, id)
		res.Added = append(res.Added, id)
	}
	if len(res.Added) > 0 {
		res.Profile.SetPreferredTags(current)
		slices.Sort(res.Added)
		res.Outcome = OutcomeMutated
	}
	return res
}

// ValidateAction is the core's own check on an admitted action.
func ValidateAction(action *types.UserAction) error {
	if action == nil || !validActionType(action.ActionType) {
		return ErrInvalidActionType
	}
	if !(action.ActionValue > 0) {
		return ErrInvalidActionValue
	}
	return nil
}
