// Package services implements the node-generation and graph-mutation
// pipeline: event synthesis, image generation fan-out, node assembly, and
// reachability-based cascade deletion.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"lifepath-backend/application/ports"
	"lifepath-backend/domain/lifepath"

	"go.uber.org/zap"
)

// defaultEventType is used when neither the generator nor the request
// supplies an event category.
const defaultEventType = "life-event"

// SynthesisInput carries everything event generation needs for one batch.
type SynthesisInput struct {
	PriorNodes       []lifepath.Node
	Prompt           string
	NodeType         string
	TimeInMonths     int // > 0 fixes every event's offset; otherwise random per event in [1,24]
	Positivity       int // 0-100 fixes the band; negative lets it vary per event
	NumNodes         int
	CumulativeMonths int
	Profile          *lifepath.UserProfile
}

// eventConfig is the per-event time/positivity configuration computed
// before the generator call. Fallback events reuse it so a failed call
// still honors the request parameters.
type eventConfig struct {
	timeMonths int
	positivity int
}

// Synthesizer turns prior-node context and generation parameters into a
// validated list of candidate life events. It is total: for any input with
// NumNodes >= 1 it returns exactly NumNodes candidates and never an error.
type Synthesizer struct {
	generator ports.TextGenerator
	timeout   time.Duration
	logger    *zap.Logger
}

// NewSynthesizer creates a Synthesizer. timeout bounds each generator call;
// zero means 60 seconds.
func NewSynthesizer(generator ports.TextGenerator, timeout time.Duration, logger *zap.Logger) *Synthesizer {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Synthesizer{generator: generator, timeout: timeout, logger: logger}
}

// GenerateEvents produces exactly in.NumNodes candidates. Generator errors,
// timeouts, unparseable output, and short arrays all degrade to
// deterministic placeholder events built from the precomputed per-event
// configuration.
func (s *Synthesizer) GenerateEvents(ctx context.Context, in SynthesisInput) []lifepath.EventCandidate {
	configs := buildEventConfigs(in)

	prompt := s.buildPrompt(in)

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(genCtx, prompt)
	if err != nil {
		s.logger.Warn("Event generation failed, using fallback events",
			zap.Int("numNodes", in.NumNodes),
			zap.Error(err),
		)
		return fallbackEvents(configs, 0, nil)
	}

	parsed, reason := ExtractJSONArray(raw)
	if reason != "" {
		s.logger.Warn("Could not parse generator output, using fallback events",
			zap.String("reason", reason),
			zap.Int("responseLength", len(raw)),
		)
		return fallbackEvents(configs, 0, nil)
	}

	events := make([]lifepath.EventCandidate, 0, in.NumNodes)
	for _, re := range parsed {
		if len(events) == in.NumNodes {
			break
		}
		if re.Name == "" || re.Description == "" {
			continue
		}
		events = append(events, s.toCandidate(re, in, configs[len(events)]))
	}

	if len(events) < in.NumNodes {
		s.logger.Warn("Generator returned too few usable events, padding with fallback",
			zap.Int("usable", len(events)),
			zap.Int("requested", in.NumNodes),
		)
		return fallbackEvents(configs, len(events), events)
	}

	return events
}

// toCandidate applies the defaulting rules for fields the generator omitted.
func (s *Synthesizer) toCandidate(re RawEvent, in SynthesisInput, cfg eventConfig) lifepath.EventCandidate {
	c := lifepath.EventCandidate{
		Name:            re.Name,
		Title:           re.Title,
		Description:     re.Description,
		Type:            re.Type,
		TimeMonths:      cfg.timeMonths,
		PositivityScore: cfg.positivity,
	}
	if c.Title == "" {
		c.Title = re.Name
	}
	if c.Type == "" {
		if in.NodeType != "" {
			c.Type = in.NodeType
		} else {
			c.Type = defaultEventType
		}
	}
	if re.TimeMonths != nil {
		c.TimeMonths = *re.TimeMonths
	}
	if re.PositivityScore != nil {
		c.PositivityScore = *re.PositivityScore
	}
	return c
}

// buildEventConfigs precomputes each event's time and positivity so the
// fallback path can reproduce the configuration the request asked for.
func buildEventConfigs(in SynthesisInput) []eventConfig {
	configs := make([]eventConfig, in.NumNodes)
	for i := range configs {
		cfg := eventConfig{timeMonths: in.TimeInMonths, positivity: in.Positivity}
		if in.TimeInMonths <= 0 {
			cfg.timeMonths = rand.Intn(24) + 1
		}
		if in.Positivity < 0 {
			cfg.positivity = rand.Intn(101)
		}
		configs[i] = cfg
	}
	return configs
}

// fallbackEvents completes a batch to len(configs) candidates, keeping any
// usable events already parsed and synthesizing placeholders for the rest.
func fallbackEvents(configs []eventConfig, have int, existing []lifepath.EventCandidate) []lifepath.EventCandidate {
	events := make([]lifepath.EventCandidate, 0, len(configs))
	events = append(events, existing[:have]...)
	for i := have; i < len(configs); i++ {
		events = append(events, lifepath.EventCandidate{
			Name:            fmt.Sprintf("Event %d", i+1),
			Title:           fmt.Sprintf("Life Event %d", i+1),
			Description:     "A significant life event.",
			Type:            "fallback",
			TimeMonths:      configs[i].timeMonths,
			PositivityScore: configs[i].positivity,
		})
	}
	return events
}

// buildPrompt assembles the single generation request: prior-node narrative,
// life-stage guidance, user profile, and the distinctness instruction.
func (s *Synthesizer) buildPrompt(in SynthesisInput) string {
	var b strings.Builder

	if len(in.PriorNodes) > 0 {
		b.WriteString("Life story so far:\n")
		for i, node := range in.PriorNodes {
			desc := node.Description
			if desc == "" {
				desc = "Life event: " + node.Name
			}
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, node.Name, desc)
		}
	} else {
		b.WriteString("Starting a new life journey.\n")
	}

	if in.CumulativeMonths > 0 {
		years := float64(in.CumulativeMonths) / 12
		b.WriteString("\nIMPORTANT LIFE STAGE CONTEXT:\n")
		fmt.Fprintf(&b, "- %.1f years have passed since the beginning of this life journey\n", years)
		fmt.Fprintf(&b, "- %s\n", lifepath.AgingContext(in.CumulativeMonths))
		if mortality := lifepath.MortalityContext(in.CumulativeMonths); mortality != "" {
			fmt.Fprintf(&b, "- %s\n", mortality)
		}
		b.WriteString("- Consider age-appropriate life events and transitions\n")
	}

	userName := in.Profile.DisplayName()
	if in.Profile != nil {
		writeProfileBlock(&b, in.Profile)
		b.WriteString("\nCRITICAL INSTRUCTIONS:\n")
		fmt.Fprintf(&b, "1. ALWAYS use %q by name in all event descriptions - NEVER use \"you\", \"he\", \"she\", or \"they\"\n", userName)
		fmt.Fprintf(&b, "2. Base events heavily on %s's specific background, skills, interests, and goals\n", userName)
		fmt.Fprintf(&b, "3. Consider %s's current challenges and how they might evolve\n", userName)
		fmt.Fprintf(&b, "4. Make events realistic for someone with %s's profile and location\n", userName)
	}

	fmt.Fprintf(&b, "\nGenerate %d thematically distinct and varied life events for %s. ", in.NumNodes, userName)
	b.WriteString("Each event must be unique and explore different facets of life (e.g., career, relationship, personal growth, health). ")
	b.WriteString("Do not generate multiple events with the same underlying theme.\n\n")

	fmt.Fprintf(&b, "%s\n", lifepath.TimeGuidance(in.TimeInMonths))
	fmt.Fprintf(&b, "%s\n", lifepath.PositivityGuidance(in.Positivity))
	if in.NodeType != "" {
		fmt.Fprintf(&b, "The events should be related to: %s\n", in.NodeType)
	}

	if in.Prompt != "" {
		fmt.Fprintf(&b, "\nAdditional context from %s: %s\n", userName, in.Prompt)
	}

	b.WriteString("\nRespond with a JSON array of objects, each with fields: name, title, description, type, time_months, positivity_score.\n")

	return b.String()
}

// writeProfileBlock renders the profile fields that are present, each
// referenced by name.
func writeProfileBlock(b *strings.Builder, p *lifepath.UserProfile) {
	b.WriteString("\nCOMPREHENSIVE USER PROFILE (base ALL events heavily on this information):\n")
	fields := []struct {
		label string
		value string
	}{
		{"Full Name", p.Name},
		{"Gender", p.Gender},
		{"Current Title/Role", p.Title},
		{"Location", p.Location},
		{"Background", p.Background},
		{"Summary", p.Summary},
		{"Bio", p.Bio},
		{"Skills", p.Skills},
		{"Interests", p.Interests},
		{"Primary Goal", p.Goal},
		{"Aspirations", p.Aspirations},
		{"Core Values", p.Values},
		{"Current Challenges", p.Challenges},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(b, "- %s: %s\n", f.label, f.value)
		}
	}
}

// RawEvent is one element of the generator's JSON array before defaulting.
// Pointer fields distinguish absent from zero.
type RawEvent struct {
	Name            string `json:"name"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	TimeMonths      *int   `json:"time_months"`
	PositivityScore *int   `json:"positivity_score"`
}

// ExtractJSONArray pulls the first array-shaped JSON payload out of free
// text (first '[' to last ']') and unmarshals it. It never panics; on
// failure the returned reason is non-empty and the slice is nil.
func ExtractJSONArray(raw string) ([]RawEvent, string) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, "no JSON array found in response"
	}

	var events []RawEvent
	if err := json.Unmarshal([]byte(raw[start:end+1]), &events); err != nil {
		return nil, "malformed JSON array: " + err.Error()
	}
	return events, ""
}
