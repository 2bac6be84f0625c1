package lifepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgingContext(t *testing.T) {
	tests := []struct {
		name   string
		months int
		want   string
	}{
		{"fresh", 0, "The person should look the same age as in the reference image."},
		{"just under two years", 23, "The person should look the same age as in the reference image."},
		{"two years", 24, "The person should look slightly older, with subtle signs of maturity."},
		{"three years", 36, "The person should look slightly older, with subtle signs of maturity."},
		{"five years", 60, "The person should look noticeably older, showing clear signs of aging and maturity."},
		{"fifteen years", 180, "The person should look significantly older, with visible aging, possible gray hair, and mature features."},
		{"twenty five years", 300, "The person should look much older, with considerable aging, gray/white hair, and mature/elderly features."},
		{"forty years", 480, "The person should look elderly, with significant aging, white hair, wrinkles, and the wisdom of advanced age."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgingContext(tt.months))
		})
	}
}

func TestMortalityContext(t *testing.T) {
	t.Run("silent under thirty years", func(t *testing.T) {
		assert.Empty(t, MortalityContext(0))
		assert.Empty(t, MortalityContext(29*12))
	})

	t.Run("mentions mortality from thirty years", func(t *testing.T) {
		assert.Contains(t, MortalityContext(30*12), "mortality")
	})

	t.Run("end of life framing from fifty years", func(t *testing.T) {
		assert.Contains(t, MortalityContext(50*12), "end-of-life")
	})
}

func TestPositivityGuidance(t *testing.T) {
	assert.Equal(t, "Mix positive, neutral, and challenging events.", PositivityGuidance(-1))
	assert.Equal(t, "All events should be challenging.", PositivityGuidance(0))
	assert.Equal(t, "All events should be challenging.", PositivityGuidance(30))
	assert.Equal(t, "All events should be neutral or mixed.", PositivityGuidance(31))
	assert.Equal(t, "All events should be neutral or mixed.", PositivityGuidance(70))
	assert.Equal(t, "All events should be positive.", PositivityGuidance(71))
	assert.Equal(t, "All events should be positive.", PositivityGuidance(100))
}

func TestTimeGuidance(t *testing.T) {
	assert.Equal(t, "All events should occur around 6 months from now.", TimeGuidance(6))
	assert.Equal(t, "Events can occur at different timeframes (1-24 months).", TimeGuidance(0))
	assert.Equal(t, "Events can occur at different timeframes (1-24 months).", TimeGuidance(-3))
}

func TestCumulativeMonths(t *testing.T) {
	// Path is newest-first: C was reached from B, B from the root.
	links := []Link{
		{ID: "Now-u-B-u", Source: "Now-u", Target: "B", TimeInMonths: 6, UserID: "u"},
		{ID: "B-C-u", Source: "B", Target: "C", TimeInMonths: 18, UserID: "u"},
		{ID: "B-D-u", Source: "B", Target: "D", TimeInMonths: 99, UserID: "u"},
	}

	t.Run("sums along the highlighted path only", func(t *testing.T) {
		path := []string{"C", "B", "Now-u"}
		assert.Equal(t, 24, CumulativeMonths(path, links))
	})

	t.Run("partial path", func(t *testing.T) {
		assert.Equal(t, 6, CumulativeMonths([]string{"B", "Now-u"}, links))
	})

	t.Run("missing links contribute nothing", func(t *testing.T) {
		assert.Equal(t, 18, CumulativeMonths([]string{"C", "B", "X"}, links))
	})

	t.Run("single node or empty path", func(t *testing.T) {
		assert.Zero(t, CumulativeMonths([]string{"C"}, links))
		assert.Zero(t, CumulativeMonths(nil, links))
	})
}
