// internal/dateplan/generator.go

package dateplan

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/imadgeboyega/kiekky-couples/internal/common/clock"
	"github.com/imadgeboyega/kiekky-couples/internal/common/logger"
	"github.com/imadgeboyega/kiekky-couples/internal/games"
	"github.com/imadgeboyega/kiekky-couples/internal/llm"
)

const venueTimeout = 45 * time.Second

var defaultStarters = []games.ConversationStarter{
	{Prompt: "What's a trip you still think about, and what made it stick?", Topic: "travel"},
	{Prompt: "What does a perfect lazy Sunday look like for you?", Topic: "lifestyle"},
	{Prompt: "Which of our game answers surprised you the most?", Topic: "games"},
	{Prompt: "What's something you're learning or want to learn this year?", Topic: "growth"},
	{Prompt: "Who in your life knows you best, and how did that happen?", Topic: "relationships"},
}

// Generator builds date plans. It never fails because the model is down.
type Generator struct {
	client llm.Client
	limits DistanceLimits
	clock  clock.Clock
	log    *logger.Logger
}

func NewGenerator(client llm.Client, limits DistanceLimits, clk clock.Clock, log *logger.Logger) *Generator {
	return &Generator{client: client, limits: limits, clock: clk, log: log.With("component", "dateplan")}
}

// Generate builds the plan for an eligible couple
func (g *Generator) Generate(ctx context.Context, in Input) (*Plan, error) {
	ctx, span := otel.Tracer("dateplan").Start(ctx, "dateplan.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("pair", in.Pair.String()))

	a, b := in.Users[in.Pair.Low], in.Users[in.Pair.High]
	plan := &Plan{
		Preferences: ExtractPreferences(in.Sessions, in.Users),
		Location:    ResolveLocation(a, b, g.limits),
		GeneratedAt: g.clock.Now(),
	}

	var venues *venueSuggestion
	if g.client != nil {
		vctx, cancel := context.WithTimeout(ctx, venueTimeout)
		v, err := g.suggestVenues(vctx, plan.Preferences, plan.Location, in.Aggregate)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.log.Warn("venue generation failed, using fallback", "pair", in.Pair.String(), "error", err.Error())
		}
		venues = v
	}
	if venues == nil {
		venues = fallbackVenues(plan.Location)
		plan.Fallback = true
	}

	plan.PrimaryVenue = venues.PrimaryVenue
	plan.Alternatives = venues.Alternatives
	plan.Activities = venues.Activities
	plan.Timing = venues.Timing
	if plan.Alternatives == nil {
		plan.Alternatives = []Venue{}
	}
	if plan.Activities == nil {
		plan.Activities = []Activity{}
	}

	plan.ConversationStarters = pickStarters(in)
	plan.SensitiveTopics = sensitiveTopics(in)
	span.SetAttributes(attribute.Bool("fallback", plan.Fallback))

	g.log.Info("date plan generated",
		"pair", in.Pair.String(),
		"location_type", plan.Location.LocationType,
		"fallback", plan.Fallback,
		"starters", len(plan.ConversationStarters),
	)
	return plan, nil
}

// pickStarters prefers the couple's own starters and tops up with defaults
func pickStarters(in Input) []games.ConversationStarter {
	out := make([]games.ConversationStarter, 0, MaxStarters)
	seen := map[string]bool{}
	add := func(s games.ConversationStarter) {
		prompt := strings.TrimSpace(s.Prompt)
		key := strings.ToLower(prompt)
		if prompt == "" || seen[key] || len(out) == MaxStarters {
			return
		}
		seen[key] = true
		s.Prompt = prompt
		if strings.TrimSpace(s.Topic) == "" {
			s.Topic = "getting_to_know"
		}
		out = append(out, s)
	}

	if in.Aggregate != nil {
		for _, s := range in.Aggregate.ConversationStarters {
			add(s)
		}
	}
	for _, s := range defaultStarters {
		if len(out) >= MinStarters {
			break
		}
		add(s)
	}
	return out
}

func sensitiveTopics(in Input) []SensitiveTopic {
	out := []SensitiveTopic{}
	seen := map[string]bool{}
	add := func(t SensitiveTopic) {
		key := strings.ToLower(strings.TrimSpace(t.Topic))
		if key == "" || seen[key] || len(out) == MaxSensitiveTopics {
			return
		}
		seen[key] = true
		out = append(out, t)
	}

	for _, c := range in.Concerns {
		if c.RelatedDimension == "" {
			continue
		}
		add(SensitiveTopic{Topic: c.RelatedDimension, Reason: c.Description, Source: "readiness"})
	}
	if in.Aggregate != nil {
		for _, d := range in.Aggregate.DiscussionAreas {
			topic := d.Category
			if topic == "" {
				topic = d.Text
			}
			add(SensitiveTopic{Topic: topic, Reason: d.Text, Source: string(d.SourceGame)})
		}
	}
	return out
}
