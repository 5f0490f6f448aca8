// internal/dateplan/models.go
// First-date plan built from a couple's game results

package dateplan

import (
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/compatibility"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/matches"
	"github.com/imadgeboyega/kiekky-couples/internal/profile"
)

// Location types
const (
	LocationSameCity        = "same_city"
	LocationDifferentCities = "different_cities"
	LocationSingleUser      = "single_user"
	LocationUnknown         = "unknown"
)

// FallbackCity is used when no usable city is known
const FallbackCity = "your city"

const (
	MinStarters        = 3
	MaxStarters        = 5
	MaxAlternatives    = 4
	MaxActivities      = 3
	MaxSensitiveTopics = 5
)

// Venue is a place to meet
type Venue struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Area        string `json:"area,omitempty"`
	PriceRange  string `json:"price_range,omitempty"`
	WhyItFits   string `json:"why_it_fits,omitempty"`
}

// Activity is something to do on the date
type Activity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration,omitempty"`
}

// Timing suggests when and for how long
type Timing struct {
	SuggestedDuration string `json:"suggested_duration"`
	BestTimeOfDay     string `json:"best_time_of_day"`
	Reasoning         string `json:"reasoning"`
}

// Preferences are read from game results, with profile defaults for gaps
type Preferences struct {
	AdventureLevel  string   `json:"adventure_level"`
	BudgetAlignment string   `json:"budget_alignment"`
	Pace            string   `json:"pace"`
	Communication   string   `json:"communication"`
	SharedInterests []string `json:"shared_interests"`
}

// Location is where the date should happen
type Location struct {
	City          string   `json:"city"`
	Area          string   `json:"area,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	LocationType  string   `json:"location_type"`
	DistanceKM    *float64 `json:"distance_km,omitempty"`
	MaxDistanceKM int      `json:"max_distance_km"`
}

// SensitiveTopic is something to approach gently
type SensitiveTopic struct {
	Topic  string `json:"topic"`
	Reason string `json:"reason"`
	Source string `json:"source"`
}

// Plan is the generated date plan
type Plan struct {
	PrimaryVenue         Venue                       `json:"primary_venue"`
	Alternatives         []Venue                     `json:"alternatives"`
	Activities           []Activity                  `json:"activities"`
	ConversationStarters []games.ConversationStarter `json:"conversation_starters"`
	SensitiveTopics      []SensitiveTopic            `json:"sensitive_topics"`
	Timing               Timing                      `json:"timing"`
	Preferences          Preferences                 `json:"extracted_preferences"`
	Location             Location                    `json:"location"`
	Fallback             bool                        `json:"fallback"`
	GeneratedAt          time.Time                   `json:"generated_at"`
}

// Concern is a readiness caution the plan should steer around
type Concern struct {
	Type             string
	Description      string
	RelatedDimension string
}

// Input is everything the generator reads
type Input struct {
	Pair      matches.Pair
	Users     map[int64]*profile.User
	Aggregate *compatibility.Aggregate
	Sessions  map[games.GameType]*games.Session
	Concerns  []Concern
}
