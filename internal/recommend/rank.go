package recommend

import (
	"sort"
	"strings"

	types "github.com/yungbote/paperrec-backend/internal/domain"
)

// Selection describes one ranking request after mode resolution.
type Selection struct {
	Mode          Mode
	PreferredTags []uint
	// FilterTag narrows personalized results to papers carrying the tag, and popular
	// results to papers whose primary subject contains the tag name.
	FilterTag *types.Tag
	Limit     int
}

type Ranked struct {
	Paper              *types.Paper
	Reason             string
	RecommendationType string
}

// Less is the ranking order: popularity desc, published date desc with undated
// papers last, id asc. It is a total order over distinct ids.
func Less(a, b *types.Paper) bool {
	if a.Popularity != b.Popularity {
		return a.Popularity > b.Popularity
	}
	switch {
	case a.PublishedDate != nil && b.PublishedDate == nil:
		return true
	case a.PublishedDate == nil && b.PublishedDate != nil:
		return false
	case a.PublishedDate != nil && b.PublishedDate != nil && !a.PublishedDate.Equal(*b.PublishedDate):
		return a.PublishedDate.After(*b.PublishedDate)
	}
	return a.ID < b.ID
}

// Matches reports whether p is a candidate for sel.
func Matches(sel Selection, p *types.Paper) bool {
	if p == nil {
		return false
	}
	switch sel.Mode {
	case ModePersonalized:
		if !hasAnyTag(p, sel.PreferredTags) {
			return false
		}
		return sel.FilterTag == nil || hasAnyTag(p, []uint{sel.FilterTag.ID})
	default:
		if sel.FilterTag == nil {
			return true
		}
		return strings.Contains(strings.ToLower(p.PrimarySubject), strings.ToLower(strings.TrimSpace(sel.FilterTag.Name)))
	}
}

// Rank filters catalog by sel, drops duplicate ids, orders by Less and truncates to
// sel.Limit. The result is never padded.
func Rank(sel Selection, catalog []*types.Paper, policy Policy) []Ranked {
	seen := make(map[string]struct{}, len(catalog))
	cands := make([]*types.Paper, 0, len(catalog))
	for _, p := range catalog {
		if !Matches(sel, p) {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		cands = append(cands, p)
	}
	sort.SliceStable(cands, func(i, j int) bool { return Less(cands[i], cands[j]) })
	if sel.Limit >= 0 && len(cands) > sel.Limit {
		cands = cands[:sel.Limit]
	}

	reason := policy.reason(sel.Mode)
	recType := sel.Mode.RecommendationType()
	out := make([]Ranked, 0, len(cands))
	for _, p := range cands {
		out = append(out, Ranked{Paper: p, Reason: reason, RecommendationType: recType})
	}
	return out
}

func hasAnyTag(p *types.Paper, ids []uint) bool {
	for _, t := range p.Tags {
		for _, id := range ids {
			if t.ID == id {
				return true
			}
		}
	}
	return false
}
