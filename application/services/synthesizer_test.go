package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"lifepath-backend/domain/lifepath"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer(gen *stubTextGenerator) *Synthesizer {
	return NewSynthesizer(gen, time.Second, testLogger())
}

func TestGenerateEventsParsesGeneratorOutput(t *testing.T) {
	gen := &stubTextGenerator{response: `Here are your events:
[
  {"name": "Started a Company", "title": "Founder", "description": "Launched a startup.", "type": "career", "time_months": 8, "positivity_score": 85},
  {"name": "Moved Cities", "title": "Relocation", "description": "Moved for the new venture.", "type": "life-event", "time_months": 3, "positivity_score": 60}
]
Good luck!`}

	events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{
		NumNodes:     2,
		TimeInMonths: 12,
		Positivity:   50,
	})

	require.Len(t, events, 2)
	assert.Equal(t, "Started a Company", events[0].Name)
	assert.Equal(t, "Founder", events[0].Title)
	assert.Equal(t, 8, events[0].TimeMonths)
	assert.Equal(t, 85, events[0].PositivityScore)
	assert.Equal(t, "career", events[0].Type)
	assert.Equal(t, "Moved Cities", events[1].Name)
}

func TestGenerateEventsAppliesDefaults(t *testing.T) {
	// Missing title, type, time_months, and positivity_score.
	gen := &stubTextGenerator{response: `[{"name": "Quiet Year", "description": "Nothing much happened."}]`}

	events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{
		NumNodes:     1,
		NodeType:     "reflection",
		TimeInMonths: 9,
		Positivity:   40,
	})

	require.Len(t, events, 1)
	assert.Equal(t, "Quiet Year", events[0].Title, "title defaults to name")
	assert.Equal(t, "reflection", events[0].Type, "type defaults to requested node type")
	assert.Equal(t, 9, events[0].TimeMonths, "time defaults to the request")
	assert.Equal(t, 40, events[0].PositivityScore, "positivity defaults to the request")
}

func TestGenerateEventsZeroValueFieldsAreKept(t *testing.T) {
	gen := &stubTextGenerator{response: `[{"name": "Setback", "description": "A hard stretch.", "positivity_score": 0}]`}

	events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{
		NumNodes:   1,
		Positivity: 90,
	})

	require.Len(t, events, 1)
	assert.Zero(t, events[0].PositivityScore, "explicit zero must not be replaced by the request value")
}

func TestGenerateEventsGeneratorError(t *testing.T) {
	gen := &stubTextGenerator{err: errors.New("model unavailable")}

	events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{
		NumNodes:     3,
		TimeInMonths: 6,
		Positivity:   50,
	})

	require.Len(t, events, 3)
	for i, e := range events {
		assert.Equal(t, "fallback", e.Type)
		assert.NotEmpty(t, e.Name)
		assert.Equal(t, "A significant life event.", e.Description)
		assert.Equal(t, 6, e.TimeMonths, "fallback %d keeps the requested time", i)
		assert.Equal(t, 50, e.PositivityScore)
	}
}

func TestGenerateEventsMalformedOutput(t *testing.T) {
	for name, response := range map[string]string{
		"no array":     "I cannot answer that.",
		"broken json":  `[{"name": "Oops", "description": ]`,
		"empty string": "",
	} {
		t.Run(name, func(t *testing.T) {
			gen := &stubTextGenerator{response: response}
			events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{NumNodes: 2})
			require.Len(t, events, 2)
			for _, e := range events {
				assert.Equal(t, "fallback", e.Type)
			}
		})
	}
}

func TestGenerateEventsPadsShortArrays(t *testing.T) {
	gen := &stubTextGenerator{response: `[{"name": "Only One", "description": "The lone usable event."}]`}

	events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{NumNodes: 3})

	require.Len(t, events, 3)
	assert.Equal(t, "Only One", events[0].Name)
	assert.Equal(t, "fallback", events[1].Type)
	assert.Equal(t, "fallback", events[2].Type)
}

func TestGenerateEventsTruncatesLongArrays(t *testing.T) {
	gen := &stubTextGenerator{response: `[
	  {"name": "A", "description": "a"},
	  {"name": "B", "description": "b"},
	  {"name": "C", "description": "c"}
	]`}

	events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{NumNodes: 2})

	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].Name)
	assert.Equal(t, "B", events[1].Name)
}

func TestGenerateEventsSkipsUnusableEntries(t *testing.T) {
	gen := &stubTextGenerator{response: `[
	  {"name": "", "description": "nameless"},
	  {"name": "No Description"},
	  {"name": "Usable", "description": "fine"}
	]`}

	events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{NumNodes: 1})

	require.Len(t, events, 1)
	assert.Equal(t, "Usable", events[0].Name)
}

func TestGenerateEventsRandomizedConfig(t *testing.T) {
	gen := &stubTextGenerator{err: errors.New("down")}

	// Negative positivity and non-positive time mean per-event random values
	// within the documented ranges.
	events := newTestSynthesizer(gen).GenerateEvents(context.Background(), SynthesisInput{
		NumNodes:     5,
		TimeInMonths: 0,
		Positivity:   -1,
	})

	require.Len(t, events, 5)
	for _, e := range events {
		assert.GreaterOrEqual(t, e.TimeMonths, 1)
		assert.LessOrEqual(t, e.TimeMonths, 24)
		assert.GreaterOrEqual(t, e.PositivityScore, 0)
		assert.LessOrEqual(t, e.PositivityScore, 100)
	}
}

func TestGenerateEventsPromptMentionsProfileName(t *testing.T) {
	var captured string
	gen := &promptCapturingGenerator{captured: &captured}

	s := NewSynthesizer(gen, time.Second, testLogger())
	s.GenerateEvents(context.Background(), SynthesisInput{
		NumNodes: 1,
		Profile:  &lifepath.UserProfile{Name: "Ada", Skills: "robotics"},
	})

	assert.Contains(t, captured, "Ada")
	assert.Contains(t, captured, "robotics")
	assert.Contains(t, captured, "CRITICAL INSTRUCTIONS")
}

type promptCapturingGenerator struct {
	captured *string
}

func (g *promptCapturingGenerator) Generate(_ context.Context, prompt string) (string, error) {
	*g.captured = prompt
	return "", errors.New("capture only")
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("plain array", func(t *testing.T) {
		events, reason := ExtractJSONArray(`[{"name":"A","description":"a"}]`)
		assert.Empty(t, reason)
		require.Len(t, events, 1)
	})

	t.Run("array embedded in prose", func(t *testing.T) {
		events, reason := ExtractJSONArray("Sure! ```json\n[{\"name\":\"A\",\"description\":\"a\"}]\n``` hope that helps")
		assert.Empty(t, reason)
		require.Len(t, events, 1)
	})

	t.Run("no array", func(t *testing.T) {
		events, reason := ExtractJSONArray("no brackets here")
		assert.Nil(t, events)
		assert.NotEmpty(t, reason)
	})

	t.Run("reversed brackets", func(t *testing.T) {
		_, reason := ExtractJSONArray("] oops [")
		assert.NotEmpty(t, reason)
	})
}
