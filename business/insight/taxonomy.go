package insight

import "strings"

// DefaultCategory receives insights whose extracted category falls
// outside the closed taxonomy. They are coerced, not rejected.
const DefaultCategory = "self_awareness"

// Categories is the closed coaching taxonomy. The extraction prompt
// lists these verbatim and the scorer coerces anything else.
var Categories = []string{
	"self_awareness",
	"self_compassion",
	"self_talk",
	"self_worth",
	"identity",
	"values",
	"purpose",
	"meaning",
	"motivation",
	"discipline",
	"habits",
	"procrastination",
	"goal_setting",
	"decision_making",
	"prioritization",
	"focus",
	"time_management",
	"energy_management",
	"stress",
	"anxiety",
	"fear",
	"anger",
	"grief",
	"shame",
	"guilt",
	"loneliness",
	"depression_adjacent",
	"emotional_regulation",
	"emotional_awareness",
	"resilience",
	"adversity",
	"failure",
	"rejection",
	"perfectionism",
	"imposter_syndrome",
	"comparison",
	"confidence",
	"courage",
	"vulnerability",
	"authenticity",
	"boundaries",
	"people_pleasing",
	"communication",
	"conflict",
	"listening",
	"empathy",
	"relationships",
	"friendship",
	"family",
	"parenting",
	"romantic",
	"community",
	"leadership",
	"mentorship",
	"career",
	"work_life_balance",
	"burnout",
	"creativity",
	"learning",
	"mindfulness",
	"gratitude",
	"physical_health",
	"sleep",
	"money",
}

var categorySet = func() map[string]bool {
	m := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

// NormalizeCategory maps a raw extracted category onto the taxonomy.
// The second return reports whether the input was already valid.
func NormalizeCategory(raw string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(raw))
	c = strings.ReplaceAll(c, " ", "_")
	c = strings.ReplaceAll(c, "-", "_")
	if categorySet[c] {
		return c, true
	}
	return DefaultCategory, false
}
