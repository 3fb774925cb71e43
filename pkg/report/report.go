// Package report provides utilities for formatting and displaying run
// histories.
package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

// PrettyFormat outputs a human-readable turn-by-turn table for one run.
func PrettyFormat(runID string, turns []state.TurnResult) {
	p := message.NewPrinter(language.English)
	warn := color.New(color.FgYellow).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	fmt.Printf("--- Results for run %s ---\n", runID)
	fmt.Printf("Turn | Morale | Cred   | Service | Backlog | Share  | Cash          | Net Income    | Flags\n")
	fmt.Printf("____ | ______ | ______ | _______ | _______ | ______ | _____________ | _____________ | _____\n")
	for _, turn := range turns {
		after := turn.StateAfter
		cash := turn.Financials.Balance.Cash
		netIncome := turn.Financials.PL.NetIncome
		_, _ = p.Printf("%4d | %6.1f | %6.1f | %7.1f | %7.0f | %5.1f%% | $%12.2f | $%12.2f | %s\n",
			turn.TurnNo, after.Morale, after.Credibility, after.Service,
			after.Backlog, after.Share, cash, netIncome,
			flagSummary(turn, warn, bad))
	}
	if len(turns) > 0 {
		fmt.Printf("\n")
		last := turns[len(turns)-1]
		fmt.Printf("Event: %s (%s, tier %d)\n", last.Evaluation.Event.Name,
			last.Evaluation.Event.Category, last.Evaluation.Event.Tier)
		for _, explainer := range last.Explainers {
			fmt.Printf("  %s\n", explainer)
		}
	}
}

// CsvString renders the turn history in comma-separated value format.
func CsvString(turns []state.TurnResult) string {
	var sb strings.Builder
	sb.WriteString(`"turn","morale","credibility","service","backlog","share","cash","net_income","cfo","balance_ok","cash_recon_ok","event","notes"`)
	sb.WriteString("\n")
	for _, turn := range turns {
		after := turn.StateAfter
		fin := turn.Financials
		sb.WriteString(fmt.Sprintf(`"%d","%.2f","%.2f","%.2f","%.0f","%.2f","%.2f","%.2f","%.2f","%t","%t","%s","%s"`,
			turn.TurnNo, after.Morale, after.Credibility, after.Service,
			after.Backlog, after.Share, fin.Balance.Cash, fin.PL.NetIncome, fin.CashFlow.CFO,
			fin.BalanceOK, fin.CashReconOK,
			turn.Evaluation.Event.Name,
			strings.Join(fin.Notes, ";")))
		sb.WriteString("\n")
	}
	return sb.String()
}

// CsvFormat outputs CsvString to stdout.
func CsvFormat(turns []state.TurnResult) {
	fmt.Print(CsvString(turns))
}

func flagSummary(turn state.TurnResult, warn, bad func(a ...interface{}) string) string {
	var flags []string
	if !turn.Financials.BalanceOK {
		flags = append(flags, bad("balance"))
	}
	if !turn.Financials.CashReconOK {
		flags = append(flags, warn("cash-recon"))
	}
	if turn.StateAfter.Flags.SupplyFragile {
		flags = append(flags, warn("supply-fragile"))
	}
	if turn.StateAfter.Flags.LaborTense {
		flags = append(flags, warn("labor-tense"))
	}
	return strings.Join(flags, ",")
}
