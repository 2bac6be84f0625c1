package lifepath

import "fmt"

// AgingContext maps elapsed simulated time to the visual-aging descriptor
// injected into generation prompts. Bands are expressed in years elapsed
// since the root.
func AgingContext(totalMonths int) string {
	years := float64(totalMonths) / 12

	switch {
	case years < 2:
		return "The person should look the same age as in the reference image."
	case years < 5:
		return "The person should look slightly older, with subtle signs of maturity."
	case years < 10:
		return "The person should look noticeably older, showing clear signs of aging and maturity."
	case years < 20:
		return "The person should look significantly older, with visible aging, possible gray hair, and mature features."
	case years < 30:
		return "The person should look much older, with considerable aging, gray/white hair, and mature/elderly features."
	default:
		return "The person should look elderly, with significant aging, white hair, wrinkles, and the wisdom of advanced age."
	}
}

// MortalityContext maps elapsed simulated time to end-of-life framing for
// the text generator. Under 30 years elapsed there is no mortality comment.
func MortalityContext(totalMonths int) string {
	years := float64(totalMonths) / 12

	switch {
	case years < 30:
		return ""
	case years < 50:
		return "Consider that significant time has passed. Health and mortality may become relevant considerations."
	default:
		return "With the substantial time that has passed, consider life's natural progression including potential health challenges, retirement, or end-of-life considerations."
	}
}

// PositivityGuidance describes the requested emotional band. A negative
// value means the caller left the mix up to the generator.
func PositivityGuidance(positivity int) string {
	if positivity < 0 {
		return "Mix positive, neutral, and challenging events."
	}
	switch {
	case positivity <= 30:
		return "All events should be challenging."
	case positivity <= 70:
		return "All events should be neutral or mixed."
	default:
		return "All events should be positive."
	}
}

// TimeGuidance describes the requested time placement. Non-positive means
// each event picks its own offset in [1,24] months.
func TimeGuidance(timeInMonths int) string {
	if timeInMonths > 0 {
		return fmt.Sprintf("All events should occur around %d months from now.", timeInMonths)
	}
	return "Events can occur at different timeframes (1-24 months)."
}

// CumulativeMonths sums the elapsed time along a highlighted path. The path
// is ordered newest-first (clicked node back toward the root); links are
// stored earlier node → later node, so for each consecutive pair path[i+1]
// is the link source and path[i] the target.
func CumulativeMonths(path []string, links []Link) int {
	total := 0
	for i := 0; i+1 < len(path); i++ {
		source := path[i+1]
		target := path[i]
		for _, l := range links {
			if l.Source == source && l.Target == target {
				total += l.TimeInMonths
				break
			}
		}
	}
	return total
}
