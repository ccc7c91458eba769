package record

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var mentionRe = regexp.MustCompile(`\$+([\d,]*\.?\d?)`)

// costOverrides names recurring activities whose descriptions list several
// prices on purpose (per-session vs per-season); for those the cheapest
// mention wins. Inherited as an explicit table; do not generalize it.
var costOverrides = []string{"volleyball"}

// ReconcileCost cross-checks the advertised cost against every dollar amount
// mentioned in the event description.
//
// No mentions: the advertised cost stands. Exactly one distinct mention: the
// larger of mention and advertised wins, so a description that disagrees with
// the listed price never leads to under-paying. Several distinct mentions:
// the minimum mention wins only for names in the override table, otherwise
// the advertised cost stands.
func ReconcileCost(name, description string, advertised *decimal.Decimal) *decimal.Decimal {
	matches := mentionRe.FindAllStringSubmatch(description, -1)

	mentions := make(map[string]decimal.Decimal)
	for _, m := range matches {
		d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		mentions[d.String()] = d
	}
	if len(mentions) == 0 {
		return advertised
	}

	adv := decimal.Zero
	if advertised != nil {
		adv = *advertised
	}

	if len(mentions) == 1 {
		for _, mention := range mentions {
			if mention.GreaterThan(adv) {
				return &mention
			}
		}
		return &adv
	}

	lowerName := strings.ToLower(name)
	for _, activity := range costOverrides {
		if !strings.Contains(lowerName, activity) {
			continue
		}
		var min decimal.Decimal
		first := true
		for _, mention := range mentions {
			if first || mention.LessThan(min) {
				min = mention
				first = false
			}
		}
		return &min
	}
	return advertised
}
