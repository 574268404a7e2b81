package normalize

import (
	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-tally/internal/domain"
)

// canonicalLabel reports the canonical label v spells, if any. Only string
// values qualify; case and surrounding whitespace are ignored.
func canonicalLabel(v any) (domain.Label, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return domain.ParseLabel(lowerTrim(s))
}

// resolveLabel applies the layered label lookup, first match wins:
//  1. the first present top-level label alias;
//  2. each label alias inside the nested labels object;
//  3. each declared fallback key inside the nested labels object;
//  4. unknown.
func (n *Normalizer) resolveLabel(raw domain.RawRun) domain.Label {
	if l, ok := canonicalLabel(FirstPresent(raw, n.cfg.LabelKeys, nil)); ok {
		return l
	}

	nested, ok := raw[LabelsKey].(map[string]any)
	if !ok {
		return domain.LabelUnknown
	}
	for _, keys := range [][]string{n.cfg.LabelKeys, n.cfg.NestedLabelFallbackKeys} {
		for _, k := range keys {
			if l, ok := canonicalLabel(nested[k]); ok {
				return l
			}
		}
	}
	return domain.LabelUnknown
}

// closestLabel returns the canonical label nearest to s by edit distance
// along with that distance.
func closestLabel(s string) (domain.Label, int) {
	lowered := lowerTrim(s)
	best, bestDist := domain.LabelUnknown, -1
	for _, l := range domain.Labels {
		d := levenshtein.ComputeDistance(lowered, string(l))
		if bestDist < 0 || d < bestDist {
			best, bestDist = l, d
		}
	}
	return best, bestDist
}
