package rng

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
)

// canonicalState renders a state into a stable string for hashing. Field
// order is fixed here and map keys are sorted, so any reordering of the
// state's fields or flag entries produces the same output. Reproducibility
// of generated events depends on this function never varying between
// invocations for equal states.
func canonicalState(s state.CompanyState) string {
	var b strings.Builder

	b.WriteString("turn=")
	b.WriteString(strconv.Itoa(s.Turn))
	writeFloat(&b, "morale", s.Morale)
	writeFloat(&b, "credibility", s.Credibility)
	writeFloat(&b, "service", s.Service)
	writeFloat(&b, "backlog", s.Backlog)
	writeFloat(&b, "share", s.Share)
	writeFloat(&b, "runway", s.CashRunwayMonths)
	writeFloat(&b, "tail_risk", s.TailRisk)

	b.WriteString(";labor_tense=")
	b.WriteString(strconv.FormatBool(s.Flags.LaborTense))
	b.WriteString(";supply_fragile=")
	b.WriteString(strconv.FormatBool(s.Flags.SupplyFragile))

	keys := make([]string, 0, len(s.Flags.Pressure))
	for k := range s.Flags.Pressure {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeFloat(&b, "pressure."+k, s.Flags.Pressure[k])
	}

	for _, eff := range s.ActiveShocks {
		writeEffect(&b, "shock", eff)
	}
	for _, eff := range s.ActiveRewards {
		writeEffect(&b, "reward", eff)
	}

	for _, decl := range s.RecentDeclarations {
		b.WriteString(";decl=")
		b.WriteString(decl)
	}

	if s.Financials != nil {
		writeFloat(&b, "cash", s.Financials.Balance.Cash)
		writeFloat(&b, "debt", s.Financials.Balance.Debt)
		writeFloat(&b, "retained", s.Financials.Balance.RetainedEarnings)
		writeFloat(&b, "revenue", s.Financials.PL.Revenue)
		writeFloat(&b, "net_income", s.Financials.PL.NetIncome)
	}

	return b.String()
}

func writeFloat(b *strings.Builder, name string, v float64) {
	b.WriteString(";")
	b.WriteString(name)
	b.WriteString("=")
	b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}

func writeEffect(b *strings.Builder, kind string, eff state.ActiveEffect) {
	b.WriteString(";")
	b.WriteString(kind)
	b.WriteString("=")
	b.WriteString(eff.Category)
	b.WriteString("/")
	b.WriteString(strconv.Itoa(eff.Tier))
	b.WriteString("/")
	b.WriteString(eff.Name)
	b.WriteString("/")
	b.WriteString(eff.Decay)
}
