package antihallucination

import "strings"

const defaultAbstentionThreshold = 0.3

var outOfScopeMarkers = []string{
	"precio", "cuánto cuesta", "cuanto cuesta", "opinión", "opinion",
	"mejor universidad", "peor universidad", "mejor facultad", "peor facultad",
}

// ShouldAbstain reports whether a query/confidence pair should abstain,
// and why. Out-of-scope markers take priority over the confidence
// threshold.
func ShouldAbstain(query string, confidence, threshold float64) (bool, string) {
	if threshold == 0 {
		threshold = defaultAbstentionThreshold
	}

	lower := strings.ToLower(query)
	for _, marker := range outOfScopeMarkers {
		if strings.Contains(lower, marker) {
			return true, "out-of-scope: query concerns a topic outside this system's coverage"
		}
	}

	if confidence < threshold {
		return true, "insufficient information: retrieved context does not support a confident answer"
	}
	return false, ""
}

// FallbackContacts maps a dispatch key to a configured contact string.
type FallbackContacts map[string]string

// DefaultFallbackContacts returns sensible defaults the caller can
// override via configuration.
func DefaultFallbackContacts() FallbackContacts {
	return FallbackContacts{
		"enrollment":         "inscripciones@fi.uba.ar",
		"graduate_direction": "direccion.posgrado@fi.uba.ar",
		"default":            "info@fi.uba.ar",
	}
}

var (
	enrollmentKeywords = []string{"inscrib"}
	finalWorkKeywords  = []string{"trabajo final", "tesis", "ttf", "defensa"}
	projectKeywords    = []string{"proyecto", "gdp", "gti"}
)

// Dispatch picks exactly one fallback contact for query by keyword
// match, defaulting when nothing matches.
func Dispatch(query string, contacts FallbackContacts) string {
	lower := strings.ToLower(query)

	if containsAny(lower, enrollmentKeywords) {
		return contacts["enrollment"]
	}
	if containsAny(lower, projectKeywords) || containsAny(lower, finalWorkKeywords) {
		return contacts["graduate_direction"]
	}
	return contacts["default"]
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
