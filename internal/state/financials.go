package state

// ProfitAndLoss is the period income statement in currency-scaled units.
type ProfitAndLoss struct {
	Revenue      float64 `json:"revenue"`
	COGS         float64 `json:"cogs"`
	GrossProfit  float64 `json:"gross_profit"`
	Opex         float64 `json:"opex"`
	EBITDA       float64 `json:"ebitda"`
	Depreciation float64 `json:"depreciation"`
	EBIT         float64 `json:"ebit"`
	Interest     float64 `json:"interest"`
	Taxes        float64 `json:"taxes"`
	NetIncome    float64 `json:"net_income"`
}

// CashFlow is the indirect-method period cash-flow statement.
type CashFlow struct {
	CFO         float64 `json:"cfo"`
	CFI         float64 `json:"cfi"`
	CFF         float64 `json:"cff"`
	DirectSpend float64 `json:"direct_spend,omitempty"`
	NetChange   float64 `json:"net_change"`
}

// BalanceSheet is the closing balance sheet for a period. Each turn's
// engine invocation reads the previous balance sheet by value and produces
// a new, disjoint one.
type BalanceSheet struct {
	Cash             float64 `json:"cash"`
	Receivables      float64 `json:"receivables"`
	Inventory        float64 `json:"inventory"`
	FixedAssets      float64 `json:"fixed_assets"`
	Payables         float64 `json:"payables"`
	Debt             float64 `json:"debt"`
	RetainedEarnings float64 `json:"retained_earnings"`
	OtherEquity      float64 `json:"other_equity"`
}

// Assets sums the asset side of the sheet.
func (b BalanceSheet) Assets() float64 {
	return b.Cash + b.Receivables + b.Inventory + b.FixedAssets
}

// LiabilitiesAndEquity sums the other side of the sheet.
func (b BalanceSheet) LiabilitiesAndEquity() float64 {
	return b.Payables + b.Debt + b.RetainedEarnings + b.OtherEquity
}

// FinancialSnapshot is the fully reconciled statement set for one period.
// It is recomputed fresh every turn and never mutated after creation;
// ownership passes to the turn record.
type FinancialSnapshot struct {
	PL          ProfitAndLoss `json:"pl"`
	CashFlow    CashFlow      `json:"cash_flow"`
	Balance     BalanceSheet  `json:"balance"`
	BalanceOK   bool          `json:"balance_ok"`
	CashReconOK bool          `json:"cash_recon_ok"`
	Notes       []string      `json:"notes,omitempty"`
}
