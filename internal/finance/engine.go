// Package finance computes a fully reconciled profit-and-loss, cash-flow,
// and balance-sheet snapshot for one period from a driver set and the prior
// balance sheet.
package finance

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/constants"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/mathutil"
)

// Drivers are the financial input variables for one period.
type Drivers struct {
	UnitsSold  float64 `json:"units_sold"`
	Price      float64 `json:"price"`
	UnitCost   float64 `json:"unit_cost"`
	Opex       float64 `json:"opex"`
	Capex      float64 `json:"capex"`
	DSODays    float64 `json:"dso_days"`
	DPODays    float64 `json:"dpo_days"`
	DIODays    float64 `json:"dio_days"`
	ScrapRate  float64 `json:"scrap_rate"`
	PeriodDays float64 `json:"period_days"`
}

// Params are the engine's slow-moving assumptions.
type Params struct {
	UsefulLifeYears float64 `json:"useful_life_years" yaml:"usefulLifeYears"`
	MinCashBuffer   float64 `json:"min_cash_buffer" yaml:"minCashBuffer"`
	// Interest and tax are fixed at zero for now; the fields exist so the
	// statement shape does not change when they land.
	InterestRate float64 `json:"interest_rate" yaml:"interestRate"`
	TaxRate      float64 `json:"tax_rate" yaml:"taxRate"`
}

// DefaultParams returns the engine assumptions used when configuration
// supplies none.
func DefaultParams() Params {
	return Params{
		UsefulLifeYears: constants.DefaultUsefulLifeYears,
		MinCashBuffer:   constants.DefaultMinCashBuffer,
	}
}

// Policy holds the discretionary financing choices.
type Policy struct {
	PayDividends bool `json:"pay_dividends" yaml:"payDividends"`
}

// Engine computes period financial statements. It holds no mutable state.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new financial engine with the given logger.
// If logger is nil, it will use a no-op logger to prevent panics.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// Compute produces the reconciled snapshot for one period. It is total: all
// inputs are assumed well-typed numbers and no failure modes are declared.
// Numeric drift in the balance identity is self-healed via a retained
// earnings plug; cash reconciliation drift is reported, never raised.
func (e *Engine) Compute(prior state.BalanceSheet, d Drivers, p Params, policy Policy, directSpend float64) state.FinancialSnapshot {
	var notes []string

	period := d.PeriodDays
	if period <= 0 {
		period = constants.BaselinePeriodDays
	}
	life := p.UsefulLifeYears
	if life <= 0 {
		life = constants.DefaultUsefulLifeYears
	}

	// P&L.
	revenue := d.UnitsSold * d.Price
	cogs := d.UnitsSold * d.UnitCost * (1 + d.ScrapRate)
	if d.ScrapRate > 0 {
		notes = append(notes, fmt.Sprintf("scrap factor %.3f applied to COGS", d.ScrapRate))
	}
	grossProfit := revenue - cogs
	ebitda := grossProfit - d.Opex
	depreciation := prior.FixedAssets / life / constants.MonthsPerYear * (period / constants.BaselinePeriodDays)
	ebit := ebitda - depreciation
	interest := 0.0
	taxes := 0.0
	netIncome := ebit - interest - taxes

	// Working capital from day-based turnover ratios.
	receivables := revenue * (d.DSODays / period)
	inventory := cogs * (d.DIODays / period)
	payables := cogs * (d.DPODays / period)
	deltaNWC := (receivables - prior.Receivables) + (inventory - prior.Inventory) - (payables - prior.Payables)

	fixedAssets := prior.FixedAssets - depreciation + d.Capex

	cfo := netIncome + depreciation - deltaNWC
	cfi := -d.Capex
	cff := 0.0

	debt := prior.Debt
	retained := prior.RetainedEarnings + netIncome

	provisional := prior.Cash + cfo + cfi
	if provisional < p.MinCashBuffer {
		draw := p.MinCashBuffer - provisional
		debt += draw
		cff += draw
		notes = append(notes, fmt.Sprintf("debt draw of %.2f to hold min cash buffer %.2f", draw, p.MinCashBuffer))
	} else if policy.PayDividends {
		surplus := provisional - p.MinCashBuffer
		if surplus > 0 && retained > 0 {
			dividend := mathutil.Min(constants.DividendSurplusShare*surplus, retained)
			retained -= dividend
			cff -= dividend
			notes = append(notes, fmt.Sprintf("dividend of %.2f paid from cash surplus", dividend))
		}
	}

	cash := prior.Cash + cfo + cfi + cff

	// Direct cash spending lands after the financing step and reduces
	// retained earnings like an unbudgeted expense.
	if directSpend != 0 {
		cash -= directSpend
		retained -= directSpend
		notes = append(notes, fmt.Sprintf("direct cash spend of %.2f applied", directSpend))
	}

	// Hard floor, independent of the buffer financing logic. When it binds,
	// the reconciliation check below reports the divergence.
	if cash < 0 {
		notes = append(notes, fmt.Sprintf("cash floored at zero (would have been %.2f)", cash))
		cash = 0
	}

	balance := state.BalanceSheet{
		Cash:             cash,
		Receivables:      receivables,
		Inventory:        inventory,
		FixedAssets:      fixedAssets,
		Payables:         payables,
		Debt:             debt,
		RetainedEarnings: retained,
		OtherEquity:      prior.OtherEquity,
	}

	// Balance identity, self-healed via a retained-earnings plug.
	if diff := balance.Assets() - balance.LiabilitiesAndEquity(); !mathutil.WithinTolerance(diff, 0, constants.BalanceTolerance) {
		balance.RetainedEarnings += diff
		notes = append(notes, fmt.Sprintf("retained earnings plug of %.2f applied to close balance identity", diff))
	}
	balanceOK := mathutil.WithinTolerance(balance.Assets(), balance.LiabilitiesAndEquity(), constants.BalanceTolerance)

	// Cash reconciliation check; drift here is surfaced, not healed.
	expectedCash := prior.Cash + cfo + cfi + cff - directSpend
	cashReconOK := mathutil.WithinTolerance(balance.Cash, expectedCash, constants.CashReconTolerance)
	if !cashReconOK {
		notes = append(notes, fmt.Sprintf("cash reconciliation off by %.2f (open %.2f + CFO %.2f + CFI %.2f + CFF %.2f - spend %.2f != close %.2f)",
			balance.Cash-expectedCash, prior.Cash, cfo, cfi, cff, directSpend, balance.Cash))
	}
	snap := state.FinancialSnapshot{
		PL: state.ProfitAndLoss{
			Revenue:      revenue,
			COGS:         cogs,
			GrossProfit:  grossProfit,
			Opex:         d.Opex,
			EBITDA:       ebitda,
			Depreciation: depreciation,
			EBIT:         ebit,
			Interest:     interest,
			Taxes:        taxes,
			NetIncome:    netIncome,
		},
		CashFlow: state.CashFlow{
			CFO:         cfo,
			CFI:         cfi,
			CFF:         cff,
			DirectSpend: directSpend,
			NetChange:   balance.Cash - prior.Cash,
		},
		Balance:     balance,
		BalanceOK:   balanceOK,
		CashReconOK: cashReconOK,
		Notes:       notes,
	}

	e.logger.Debug("financials computed",
		zap.String("op", "finance.Compute"),
		zap.Float64("revenue", revenue),
		zap.Float64("net_income", netIncome),
		zap.Float64("cash_close", balance.Cash),
		zap.Bool("balance_ok", balanceOK),
		zap.Bool("cash_recon_ok", cashReconOK),
	)

	return snap
}
