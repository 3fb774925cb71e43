package turn

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ChandlerShores/Green-Cut-Sim/pkg/mathutil"
)

// Direct cash-spending detection pattern-matches the declaration text for
// monetary or percentage phrases ("$2M in bonuses", "spend 10% of our
// cash"). Free-text parsing belongs to the analysis collaborator; this one
// narrow exception survives here until the contract grows an explicit
// structured field for it. See DESIGN.md.

var (
	moneyPattern   = regexp.MustCompile(`(?i)\$\s*([0-9]+(?:,[0-9]{3})*(?:\.[0-9]+)?)\s*(billion|million|thousand|[bmk])?\b`)
	percentPattern = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*%\s+of\s+(?:our\s+|the\s+)?cash`)
	spendVerbs     = []string{"spend", "pay", "bonus", "bonuses", "invest", "buy", "distribute", "donate", "fund", "allocate"}
)

// DetectDirectSpend scans a declaration for a direct cash-spending
// instruction and returns the amount computed against the pre-turn cash
// balance. Percentage phrases always resolve against preTurnCash; dollar
// amounts require a spending verb somewhere in the declaration so that
// revenue targets and similar figures do not fire the lever.
func DetectDirectSpend(declaration string, preTurnCash float64) (float64, bool) {
	if m := percentPattern.FindStringSubmatch(declaration); m != nil {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err == nil && pct > 0 {
			return mathutil.ApplyPercentage(preTurnCash, pct), true
		}
	}

	if !containsSpendVerb(declaration) {
		return 0, false
	}

	if m := moneyPattern.FindStringSubmatch(declaration); m != nil {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil || amount <= 0 {
			return 0, false
		}
		switch strings.ToLower(m[2]) {
		case "b", "billion":
			amount *= 1e9
		case "m", "million":
			amount *= 1e6
		case "k", "thousand":
			amount *= 1e3
		}
		return amount, true
	}

	return 0, false
}

func containsSpendVerb(declaration string) bool {
	lower := strings.ToLower(declaration)
	for _, verb := range spendVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}
