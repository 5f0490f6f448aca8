// internal/psychometric/dealbreakers.go

package psychometric

import (
	"sort"
	"strings"
)

var (
	wantsKids = map[string]bool{"definitely_want": true, "probably_want": true}
	noKids    = map[string]bool{"definitely_not": true, "probably_not": true}
)

var conflictReasons = map[string]string{
	DealbreakerKids:     "One partner wants children and the other does not",
	DealbreakerReligion: "Both partners require a partner of their own, different, religion",
	DealbreakerLocation: "Both partners are committed to staying in different cities",
}

// DetectDealbreakerConflicts returns the hard incompatibilities between two analyses.
// The result does not depend on argument order.
func DetectDealbreakerConflicts(a, b *Analysis) []DealbreakerConflict {
	if a == nil || b == nil {
		return nil
	}

	found := map[string]DealbreakerConflict{}
	for _, da := range a.Dealbreakers {
		for _, db := range b.Dealbreakers {
			category := normalize(da.Type)
			if category != normalize(db.Type) {
				continue
			}
			if !conflicts(category, da, db) {
				continue
			}
			c := newConflict(category, da.Value, db.Value)
			// keep the smallest value pair when a type is listed more than once
			if prev, seen := found[category]; !seen || strings.Join(c.Values, "|") < strings.Join(prev.Values, "|") {
				found[category] = c
			}
		}
	}

	out := make([]DealbreakerConflict, 0, len(found))
	for _, c := range found {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func conflicts(category string, a, b Dealbreaker) bool {
	va, vb := normalize(a.Value), normalize(b.Value)
	switch category {
	case DealbreakerKids:
		if (wantsKids[va] && noKids[vb]) || (noKids[va] && wantsKids[vb]) {
			return true
		}
	case DealbreakerReligion:
		if isImportance(a, "mandatory") && isImportance(b, "mandatory") && va != vb {
			return true
		}
	case DealbreakerLocation:
		if isImportance(a, "strict") && isImportance(b, "strict") && va != vb {
			return true
		}
	}
	return listsValue(a.IncompatibleWith, vb) || listsValue(b.IncompatibleWith, va)
}

func newConflict(category, v1, v2 string) DealbreakerConflict {
	values := []string{normalize(v1), normalize(v2)}
	sort.Strings(values)
	reason, ok := conflictReasons[category]
	if !ok {
		reason = "Incompatible " + strings.ReplaceAll(category, "_", " ") + " requirements"
	}
	return DealbreakerConflict{Category: category, Values: values, Reason: reason}
}

func isImportance(d Dealbreaker, want string) bool {
	return normalize(d.Importance) == want
}

func listsValue(list []string, value string) bool {
	if value == "" {
		return false
	}
	for _, v := range list {
		if normalize(v) == value {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
