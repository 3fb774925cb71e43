// Package constants provides shared constants for the simulation core.
package constants

// Numeric tolerances.
const (
	// BalanceTolerance is the tolerance for the balance-sheet identity check.
	BalanceTolerance = 1e-6

	// CashReconTolerance is the tolerance for the cash reconciliation check.
	CashReconTolerance = 1e-6

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Soft-KPI domain bounds.
const (
	// KPIMin is the lower bound of the bounded soft KPIs.
	KPIMin = 0.0

	// KPIMax is the upper bound of morale, credibility, and service.
	KPIMax = 100.0

	// PressureMin and PressureMax bound the continuous risk-pressure values.
	PressureMin = 0.0
	PressureMax = 1.0
)

// Event generation thresholds and scale factors.
const (
	// ShockPressureMax caps the shock-pressure score added to the shock roll.
	ShockPressureMax = 20.0

	// ShockPressureScale converts summed risk pressures into roll points.
	ShockPressureScale = 20.0

	// MoraleLowThreshold marks morale values that raise shock pressure.
	MoraleLowThreshold = 60.0

	// BacklogHighThreshold marks backlog levels that raise shock pressure.
	BacklogHighThreshold = 8000.0

	// LowCashThreshold marks cash balances that raise shock pressure.
	LowCashThreshold = 250000.0

	// CredibilityLowThreshold gates the penalty-layer morale hit and the
	// credibility_low hint.
	CredibilityLowThreshold = 50.0

	// Fixed shock-pressure bonuses for threshold breaches.
	MoraleLowBonus   = 3.0
	BacklogHighBonus = 3.0
	CashTightBonus   = 4.0

	// Severity tier roll cutoffs (roll + pressure, capped at 100).
	Tier0Cutoff = 40
	Tier1Cutoff = 80
	Tier2Cutoff = 96

	// TailRiskMax bounds the accumulated tail-risk score.
	TailRiskMax = 1.0
)

// Signal composition scale factors.
const (
	// CEOBacklogUnitScale converts backlog signal strength into units.
	CEOBacklogUnitScale = 250.0

	// EventBacklogUnitScale is the event-layer backlog unit scale.
	EventBacklogUnitScale = 200.0

	// SupplyFragileCEOFactor amplifies CEO backlog deltas under fragility.
	SupplyFragileCEOFactor = 1.2

	// SupplyFragileEventFactor amplifies event backlog deltas under fragility.
	SupplyFragileEventFactor = 1.3

	// EventLayerFactor discounts event-layer deltas relative to CEO deltas.
	EventLayerFactor = 0.8

	// PenaltyCredibilityFactor scales the incoherence credibility hit.
	PenaltyCredibilityFactor = 0.2

	// PenaltyMoraleFactor scales the secondary morale hit at low credibility.
	PenaltyMoraleFactor = 0.1

	// LaborTenseMoraleFactor and LaborTenseCredibilityFactor are the
	// contextual pre-modifiers applied under the labor-tense flag.
	LaborTenseMoraleFactor      = 1.2
	LaborTenseCredibilityFactor = 0.9

	// MoraleDecayThreshold and MoraleDecayFactor implement high-morale decay.
	MoraleDecayThreshold = 85.0
	MoraleDecayFactor    = 0.8
)

// Financial engine defaults.
const (
	// BaselinePeriodDays is the reference period for depreciation scaling.
	BaselinePeriodDays = 30.0

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DefaultUsefulLifeYears is the straight-line depreciation life.
	DefaultUsefulLifeYears = 10.0

	// DefaultMinCashBuffer is the floor the financing step defends.
	DefaultMinCashBuffer = 100000.0

	// DividendSurplusShare is the share of surplus cash paid out when the
	// dividend policy is enabled.
	DividendSurplusShare = 0.25

	// RunwayMonthsMax caps the reported cash runway.
	RunwayMonthsMax = 120.0
)

// Driver elasticities and bounds used by the turn resolver.
const (
	UnitsMoraleElasticity      = 0.05
	UnitsBacklogElasticity     = 0.03
	PriceCredibilityElasticity = 0.02
	ScrapServiceRiskElasticity = 0.02
	DSOServiceRiskDays         = 5.0
	DIOBacklogDays             = 4.0
	DIOSupplyFragileDays       = 3.0
	DSORegulatoryProbeDays     = 4.0

	// IncoherenceTrimMax is the largest fractional trim the penalty applies
	// to either units or price.
	IncoherenceTrimMax = 0.01

	UnitsMin = 0.0
	UnitsMax = 10000000.0
	PriceMin = 1.0
	PriceMax = 100000.0
	ScrapMin = 0.0
	ScrapMax = 0.25
	DSOMin   = 5.0
	DSOMax   = 120.0
	DPOMin   = 5.0
	DPOMax   = 120.0
	DIOMin   = 5.0
	DIOMax   = 180.0
)

// DeclarationHistoryMax is the number of recent declarations retained on the
// company state.
const DeclarationHistoryMax = 2

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodyBytes is the default maximum request body size (256 KB)
	DefaultMaxBodyBytes int64 = 256 * 1024
)
