// internal/dateplan/preferences.go

package dateplan

import (
	"sort"
	"strings"

	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/profile"
)

const maxSharedInterests = 10

// category alignment lookup across every finished game
type alignments map[games.GameType]map[string]float64

func (a alignments) get(gt games.GameType, category string) (float64, bool) {
	v, ok := a[gt][category]
	return v, ok
}

// ExtractPreferences reads category alignments from the couple's finished games.
// Categories nobody played fall back to profile-based defaults.
func ExtractPreferences(sessions map[games.GameType]*games.Session, users map[int64]*profile.User) Preferences {
	al := make(alignments)
	interests := map[string]bool{}
	for gt, s := range sessions {
		if s == nil || s.Result == nil || !s.Status.IsFinished() {
			continue
		}
		al[gt] = s.Result.CategoryScores
		for _, tag := range s.Result.SharedInterests {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				interests[tag] = true
			}
		}
	}

	p := Preferences{
		AdventureLevel:  adventureLevel(al),
		BudgetAlignment: budgetAlignment(al, users),
		Pace:            pace(al),
		Communication:   communication(al),
		SharedInterests: []string{},
	}
	for tag := range interests {
		p.SharedInterests = append(p.SharedInterests, tag)
	}
	sort.Strings(p.SharedInterests)
	if len(p.SharedInterests) > maxSharedInterests {
		p.SharedInterests = p.SharedInterests[:maxSharedInterests]
	}
	return p
}

func adventureLevel(al alignments) string {
	var sum float64
	var n int
	for _, src := range []struct {
		game     games.GameType
		category string
	}{
		{games.WouldYouRather, "adventure"},
		{games.IntimacySpectrum, "fantasy_roleplay"},
		{games.DreamBoard, "travel"},
	} {
		if v, ok := al.get(src.game, src.category); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return "moderate"
	}
	switch avg := sum / float64(n); {
	case avg >= 75:
		return "high"
	case avg >= 50:
		return "moderate"
	default:
		return "low"
	}
}

func budgetAlignment(al alignments, users map[int64]*profile.User) string {
	if v, ok := al.get(games.WouldYouRather, "budget"); ok {
		switch {
		case v >= 75:
			return "aligned"
		case v >= 50:
			return "mixed"
		default:
			return "different"
		}
	}
	premium := 0
	for _, u := range users {
		if u != nil && u.IsPremium {
			premium++
		}
	}
	if len(users) > 0 && premium == len(users) {
		return "flexible"
	}
	return "moderate"
}

func pace(al alignments) string {
	v, ok := al.get(games.WouldYouRather, "pace")
	switch {
	case !ok:
		return "relaxed"
	case v >= 75:
		return "in_sync"
	default:
		return "take_it_slow"
	}
}

func communication(al alignments) string {
	var sum float64
	var n int
	if v, ok := al.get(games.WouldYouRather, "communication"); ok {
		sum += v
		n++
	}
	if v, ok := al.get(games.IntimacySpectrum, "communication"); ok {
		sum += v
		n++
	}
	if n == 0 {
		return "getting_to_know"
	}
	switch avg := sum / float64(n); {
	case avg >= 70:
		return "open"
	case avg >= 45:
		return "warming_up"
	default:
		return "careful"
	}
}
