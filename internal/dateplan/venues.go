// internal/dateplan/venues.go

package dateplan

import (
	"context"
	"fmt"
	"strings"

	"github.com/imadgeboyega/kiekky-couples/internal/compatibility"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
)

const venueSystemPrompt = `You plan relaxed, safe first dates for couples who met on a dating app.
Always suggest public places. Return a JSON object with:
"primary_venue": {name, type, description, area, price_range, why_it_fits};
"alternatives": 1-2 venues with the same fields;
"activities": 2-3 items {name, description, duration};
"timing": {suggested_duration, best_time_of_day, reasoning}.`

// venueSuggestion is the model's reply
type venueSuggestion struct {
	PrimaryVenue Venue      `json:"primary_venue"`
	Alternatives []Venue    `json:"alternatives"`
	Activities   []Activity `json:"activities"`
	Timing       Timing     `json:"timing"`
}

func venuePrompt(prefs Preferences, loc Location, agg *compatibility.Aggregate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "City: %s", loc.City)
	if loc.Area != "" {
		fmt.Fprintf(&b, " (area: %s)", loc.Area)
	}
	fmt.Fprintf(&b, "\nLocation type: %s\n", loc.LocationType)
	fmt.Fprintf(&b, "Keep every venue within %d km of the couple", loc.MaxDistanceKM)
	if loc.DistanceKM != nil {
		fmt.Fprintf(&b, "; they live %.0f km apart", *loc.DistanceKM)
	}
	b.WriteString(".\n")

	fmt.Fprintf(&b, "Adventure level: %s\nBudget: %s\nPace: %s\nCommunication: %s\n",
		prefs.AdventureLevel, prefs.BudgetAlignment, prefs.Pace, prefs.Communication)
	if len(prefs.SharedInterests) > 0 {
		fmt.Fprintf(&b, "Shared interests: %s\n", strings.Join(prefs.SharedInterests, ", "))
	}

	if agg != nil {
		if agg.Overall.Score != nil {
			fmt.Fprintf(&b, "Compatibility: %d (%s)\n", *agg.Overall.Score, agg.Overall.Level)
		}
		for i, s := range agg.Strengths {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "Strength: %s\n", s.Text)
		}
	}
	return b.String()
}

func (g *Generator) suggestVenues(ctx context.Context, prefs Preferences, loc Location, agg *compatibility.Aggregate) (*venueSuggestion, error) {
	var out venueSuggestion
	err := g.client.GenerateJSON(ctx, llm.JSONRequest{
		Operation: "date_plan",
		System:    venueSystemPrompt,
		User:      venuePrompt(prefs, loc, agg),
		MaxTokens: 900,
	}, &out)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.PrimaryVenue.Name) == "" {
		return nil, llm.ErrMalformedResponse
	}

	alts := out.Alternatives[:0]
	for _, v := range out.Alternatives {
		if strings.TrimSpace(v.Name) != "" {
			alts = append(alts, v)
		}
	}
	if len(alts) > MaxAlternatives {
		alts = alts[:MaxAlternatives]
	}
	out.Alternatives = alts
	if len(out.Activities) > MaxActivities {
		out.Activities = out.Activities[:MaxActivities]
	}
	return &out, nil
}

// fallbackVenues is used whenever the model cannot produce a plan
func fallbackVenues(loc Location) *venueSuggestion {
	return &venueSuggestion{
		PrimaryVenue: Venue{
			Name:        "A cosy local cafe",
			Type:        "cafe",
			Description: fmt.Sprintf("Pick a quiet, well-reviewed cafe in %s where you can hear each other talk.", loc.City),
			Area:        loc.Area,
			PriceRange:  "$",
			WhyItFits:   "Low pressure, easy to extend or wrap up",
		},
		Alternatives: []Venue{{
			Name:        "A nearby park",
			Type:        "park",
			Description: "Grab drinks to go and stroll somewhere green.",
			PriceRange:  "free",
		}},
		Activities: []Activity{
			{Name: "Walk and talk", Description: "Take a short walk after your drink and keep the conversation going.", Duration: "30 minutes"},
			{Name: "Swap game answers", Description: "Pick one answer from your games that surprised you and explain it.", Duration: "15 minutes"},
		},
		Timing: Timing{
			SuggestedDuration: "1-2 hours",
			BestTimeOfDay:     "late afternoon",
			Reasoning:         "Daylight, no dinner commitment, and room to continue if it goes well",
		},
	}
}
