package rng

import "github.com/ChandlerShores/Green-Cut-Sim/internal/state"

// Category names form a closed set; selection is by table index, so unknown
// categories cannot occur.
const (
	CategorySupplyChain = "supply_chain"
	CategoryDemandShift = "demand_shift"
	CategoryRegulatory  = "regulatory"
	CategoryTalent      = "talent"
	CategoryCyber       = "cyber"
	CategoryCompetitor  = "competitor"
	CategoryMacro       = "macro"
	CategoryOperations  = "operations"
)

// Categories lists every event category in selection order.
var Categories = []string{
	CategorySupplyChain,
	CategoryDemandShift,
	CategoryRegulatory,
	CategoryTalent,
	CategoryCyber,
	CategoryCompetitor,
	CategoryMacro,
	CategoryOperations,
}

const tierCount = 4

// DecayFast and DecaySlow tag how an active effect is expected to fade.
// The tag is carried on the state; no decay step runs in turn resolution.
const (
	DecayFast = "fast"
	DecaySlow = "slow"
)

type effect struct {
	Name   string
	Impact state.EventImpact
	Decay  string
}

// nearMiss builds the tier-0 placeholder for a category: a named event with
// no immediate effect beyond a small tail-risk bump.
func nearMiss(name string) effect {
	return effect{
		Name:   name,
		Impact: state.EventImpact{TailRisk: 0.02},
		Decay:  DecayFast,
	}
}

// effectTable maps (category, tier) to a named event and its structured
// effect record. Soft channels (Morale, Service, Share, Backlog,
// CashRunway) are signed strengths in [-1,1]; RevenuePct/CogsPct/OpexPct
// are fractional driver adjustments; Cash is an absolute one-off flow.
var effectTable = map[string][tierCount]effect{
	CategorySupplyChain: {
		nearMiss("Supplier audit passes without findings"),
		{
			Name:  "Key component shipment delayed",
			Decay: DecayFast,
			Impact: state.EventImpact{
				CogsPct: 0.02, Backlog: 0.35, Service: -0.2, TailRisk: 0.03,
			},
		},
		{
			Name:  "Tier-2 supplier insolvency",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				CogsPct: 0.05, Backlog: 0.6, Service: -0.4, Morale: -0.2,
				Cash: -75000, TailRisk: 0.06,
			},
		},
		{
			Name:  "Port closure severs primary supply lane",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.06, CogsPct: 0.08, Backlog: 0.9, Service: -0.6,
				Morale: -0.3, Cash: -200000, TailRisk: 0.1,
			},
		},
	},
	CategoryDemandShift: {
		nearMiss("Demand tracks forecast"),
		{
			Name:  "Soft bookings in one segment",
			Decay: DecayFast,
			Impact: state.EventImpact{
				RevenuePct: -0.03, Share: -0.2, TailRisk: 0.02,
			},
		},
		{
			Name:  "Anchor customer cuts reorder volume",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.07, Share: -0.4, Morale: -0.2, Backlog: -0.3,
				TailRisk: 0.05,
			},
		},
		{
			Name:  "Category demand contracts across the market",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.12, Share: -0.6, Morale: -0.4, Backlog: -0.5,
				CashRunway: -0.3, TailRisk: 0.09,
			},
		},
	},
	CategoryRegulatory: {
		nearMiss("Routine filing accepted"),
		{
			Name:  "Regulatory probe opened",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				OpexPct: 0.02, Service: -0.15, Morale: -0.1, TailRisk: 0.04,
			},
		},
		{
			Name:  "Compliance order with remediation deadline",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				OpexPct: 0.05, Cash: -120000, Service: -0.3, Morale: -0.25,
				TailRisk: 0.07,
			},
		},
		{
			Name:  "Product line suspended pending review",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.1, OpexPct: 0.06, Cash: -300000, Share: -0.5,
				Morale: -0.4, Service: -0.4, TailRisk: 0.12,
			},
		},
	},
	CategoryTalent: {
		nearMiss("Attrition stays at baseline"),
		{
			Name:  "Team lead departs for a competitor",
			Decay: DecayFast,
			Impact: state.EventImpact{
				Morale: -0.3, Service: -0.15, TailRisk: 0.02,
			},
		},
		{
			Name:  "Wave of resignations in operations",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				Morale: -0.5, Service: -0.35, Backlog: 0.3, OpexPct: 0.03,
				TailRisk: 0.05,
			},
		},
		{
			Name:  "Unionization vote triggers work slowdown",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				Morale: -0.6, Service: -0.5, Backlog: 0.6, OpexPct: 0.05,
				RevenuePct: -0.04, TailRisk: 0.09,
			},
		},
	},
	CategoryCyber: {
		nearMiss("Phishing drill contained"),
		{
			Name:  "Credential leak forces password rotation",
			Decay: DecayFast,
			Impact: state.EventImpact{
				OpexPct: 0.01, Service: -0.1, TailRisk: 0.03,
			},
		},
		{
			Name:  "Ransomware hits a regional office",
			Decay: DecayFast,
			Impact: state.EventImpact{
				Cash: -150000, OpexPct: 0.04, Service: -0.4, Morale: -0.2,
				TailRisk: 0.07,
			},
		},
		{
			Name:  "Customer data breach disclosed",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				Cash: -400000, RevenuePct: -0.05, Share: -0.4, Service: -0.6,
				Morale: -0.3, TailRisk: 0.12,
			},
		},
	},
	CategoryCompetitor: {
		nearMiss("Competitor launch lands flat"),
		{
			Name:  "Competitor undercuts on price",
			Decay: DecayFast,
			Impact: state.EventImpact{
				RevenuePct: -0.02, Share: -0.25, TailRisk: 0.02,
			},
		},
		{
			Name:  "Rival poaches a flagship account",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.06, Share: -0.45, Morale: -0.2, TailRisk: 0.05,
			},
		},
		{
			Name:  "Well-funded entrant floods the channel",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.1, Share: -0.7, Morale: -0.3, CashRunway: -0.2,
				TailRisk: 0.08,
			},
		},
	},
	CategoryMacro: {
		nearMiss("Macro indicators hold steady"),
		{
			Name:  "Input prices tick up",
			Decay: DecayFast,
			Impact: state.EventImpact{
				CogsPct: 0.03, TailRisk: 0.02,
			},
		},
		{
			Name:  "Rate shock tightens customer budgets",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.05, CogsPct: 0.03, Share: -0.2, CashRunway: -0.25,
				TailRisk: 0.06,
			},
		},
		{
			Name:  "Currency swing inflates import costs",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.07, CogsPct: 0.09, Cash: -180000, CashRunway: -0.4,
				Morale: -0.2, TailRisk: 0.1,
			},
		},
	},
	CategoryOperations: {
		nearMiss("Maintenance window closes clean"),
		{
			Name:  "Line changeover overruns",
			Decay: DecayFast,
			Impact: state.EventImpact{
				Backlog: 0.25, Service: -0.15, CogsPct: 0.01, TailRisk: 0.02,
			},
		},
		{
			Name:  "Quality escape triggers rework",
			Decay: DecayFast,
			Impact: state.EventImpact{
				CogsPct: 0.05, Backlog: 0.4, Service: -0.4, Morale: -0.2,
				TailRisk: 0.05,
			},
		},
		{
			Name:  "Plant outage halts the main line",
			Decay: DecaySlow,
			Impact: state.EventImpact{
				RevenuePct: -0.08, CogsPct: 0.06, Backlog: 0.8, Service: -0.6,
				Morale: -0.35, Cash: -250000, TailRisk: 0.1,
			},
		},
	},
}

// rewardTable mirrors the shock table for the parallel reward draw. Rewards
// are drawn and recorded each turn but not surfaced as the active event in
// the current contract.
var rewardTable = map[string][tierCount]effect{
	CategorySupplyChain: {
		nearMiss("No supply upside this quarter"),
		{Name: "Freight rates soften", Decay: DecayFast, Impact: state.EventImpact{CogsPct: -0.02}},
		{Name: "Second source qualified ahead of plan", Decay: DecaySlow, Impact: state.EventImpact{CogsPct: -0.04, Service: 0.2}},
		{Name: "Long-term supply contract locks favorable terms", Decay: DecaySlow, Impact: state.EventImpact{CogsPct: -0.07, Service: 0.3, Morale: 0.2}},
	},
	CategoryDemandShift: {
		nearMiss("No demand upside this quarter"),
		{Name: "Pilot customer expands order", Decay: DecayFast, Impact: state.EventImpact{RevenuePct: 0.03, Share: 0.2}},
		{Name: "Segment tailwind lifts bookings", Decay: DecaySlow, Impact: state.EventImpact{RevenuePct: 0.06, Share: 0.35, Backlog: 0.2}},
		{Name: "Breakout quarter in a new vertical", Decay: DecaySlow, Impact: state.EventImpact{RevenuePct: 0.1, Share: 0.6, Morale: 0.3, Backlog: 0.4}},
	},
	CategoryRegulatory: {
		nearMiss("No regulatory upside this quarter"),
		{Name: "Permit approved early", Decay: DecayFast, Impact: state.EventImpact{OpexPct: -0.01, Service: 0.1}},
		{Name: "Favorable ruling settles open docket", Decay: DecaySlow, Impact: state.EventImpact{OpexPct: -0.03, Morale: 0.2, TailRisk: -0.03}},
		{Name: "Subsidy program covers compliance spend", Decay: DecaySlow, Impact: state.EventImpact{Cash: 150000, OpexPct: -0.04, Morale: 0.25}},
	},
	CategoryTalent: {
		nearMiss("No talent upside this quarter"),
		{Name: "Strong hiring cohort lands", Decay: DecayFast, Impact: state.EventImpact{Morale: 0.25, Service: 0.1}},
		{Name: "Respected operator joins leadership", Decay: DecaySlow, Impact: state.EventImpact{Morale: 0.4, Service: 0.25, Share: 0.1}},
		{Name: "Retention program halves attrition", Decay: DecaySlow, Impact: state.EventImpact{Morale: 0.55, Service: 0.35, OpexPct: -0.02}},
	},
	CategoryCyber: {
		nearMiss("No security upside this quarter"),
		{Name: "Security audit clears all findings", Decay: DecayFast, Impact: state.EventImpact{Service: 0.1, TailRisk: -0.02}},
		{Name: "Certification unlocks enterprise deals", Decay: DecaySlow, Impact: state.EventImpact{RevenuePct: 0.03, Share: 0.2, TailRisk: -0.03}},
		{Name: "Insurance premium drops after hardening", Decay: DecaySlow, Impact: state.EventImpact{OpexPct: -0.03, Cash: 80000, TailRisk: -0.05}},
	},
	CategoryCompetitor: {
		nearMiss("No competitive upside this quarter"),
		{Name: "Competitor stumbles on a recall", Decay: DecayFast, Impact: state.EventImpact{Share: 0.25, RevenuePct: 0.02}},
		{Name: "Rival exits the low end of the market", Decay: DecaySlow, Impact: state.EventImpact{Share: 0.45, RevenuePct: 0.05}},
		{Name: "Main competitor acquired and distracted", Decay: DecaySlow, Impact: state.EventImpact{Share: 0.65, RevenuePct: 0.08, Morale: 0.2}},
	},
	CategoryMacro: {
		nearMiss("No macro upside this quarter"),
		{Name: "Input prices ease", Decay: DecayFast, Impact: state.EventImpact{CogsPct: -0.03}},
		{Name: "Stimulus lifts customer budgets", Decay: DecaySlow, Impact: state.EventImpact{RevenuePct: 0.05, Share: 0.2, CashRunway: 0.2}},
		{Name: "Favorable currency move cuts import costs", Decay: DecaySlow, Impact: state.EventImpact{CogsPct: -0.07, Cash: 120000, CashRunway: 0.3}},
	},
	CategoryOperations: {
		nearMiss("No operational upside this quarter"),
		{Name: "Throughput improvement sticks", Decay: DecayFast, Impact: state.EventImpact{Backlog: -0.2, Service: 0.15}},
		{Name: "Automation cell comes online early", Decay: DecaySlow, Impact: state.EventImpact{CogsPct: -0.04, Backlog: -0.35, Service: 0.25}},
		{Name: "Yield breakthrough on the main line", Decay: DecaySlow, Impact: state.EventImpact{CogsPct: -0.08, Backlog: -0.5, Service: 0.4, Morale: 0.25}},
	},
}
