package recipe

import (
	"regexp"
	"strings"
)

// Equipment lists the kitchen equipment recognised as tags.
var Equipment = []string{"Slow Cooker", "Air Fryer", "Oven", "Wok", "Instant Pot", "Stove"}

var equipmentPatterns = compileEquipment(Equipment)

func compileEquipment(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return out
}

// ExtractEquipment finds equipment keywords in the title or the steps text.
// Each match is added to the returned tags (in Equipment order) and removed
// from the title.
func ExtractEquipment(title, steps string) (string, Tags) {
	tags := NewTags()
	clean := title

	for i, re := range equipmentPatterns {
		if !re.MatchString(clean) && !re.MatchString(steps) {
			continue
		}
		tags = tags.Add(Equipment[i])
		clean = re.ReplaceAllString(clean, "")
	}

	return strings.Join(strings.Fields(clean), " "), tags
}
