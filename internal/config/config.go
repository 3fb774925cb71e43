// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/finance"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/constants"
)

// Configuration holds all configuration for the simulator.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Journal  JournalConfig  `yaml:"journal,omitempty"`
	Caps     state.Caps     `yaml:"caps,omitempty"`
	Finance  FinanceConfig  `yaml:"finance,omitempty"`
	Starting StartingConfig `yaml:"starting,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// ServerConfig holds the HTTP API options.
type ServerConfig struct {
	Address      string `yaml:"address,omitempty"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes,omitempty"`
}

// JournalConfig holds the append-only run log options.
type JournalConfig struct {
	Dir        string `yaml:"dir,omitempty"`        // JSONL logs, one file per run
	SQLitePath string `yaml:"sqlitePath,omitempty"` // optional sqlite recorder
}

// FinanceConfig groups the financial engine assumptions and the baseline
// driver set the turn resolver adjusts each quarter.
type FinanceConfig struct {
	Params   finance.Params `yaml:"params,omitempty"`
	Policy   finance.Policy `yaml:"policy,omitempty"`
	Baseline Baseline       `yaml:"baseline,omitempty"`
}

// Baseline is the unmodified quarterly driver set.
type Baseline struct {
	UnitsSold  float64 `yaml:"unitsSold"`
	Price      float64 `yaml:"price"`
	UnitCost   float64 `yaml:"unitCost"`
	Opex       float64 `yaml:"opex"`
	Capex      float64 `yaml:"capex"`
	DSODays    float64 `yaml:"dsoDays"`
	DPODays    float64 `yaml:"dpoDays"`
	DIODays    float64 `yaml:"dioDays"`
	ScrapRate  float64 `yaml:"scrapRate"`
	PeriodDays float64 `yaml:"periodDays"`
}

// Drivers converts the baseline into the engine's driver record.
func (b Baseline) Drivers() finance.Drivers {
	return finance.Drivers{
		UnitsSold:  b.UnitsSold,
		Price:      b.Price,
		UnitCost:   b.UnitCost,
		Opex:       b.Opex,
		Capex:      b.Capex,
		DSODays:    b.DSODays,
		DPODays:    b.DPODays,
		DIODays:    b.DIODays,
		ScrapRate:  b.ScrapRate,
		PeriodDays: b.PeriodDays,
	}
}

// StartingConfig seeds a new run.
type StartingConfig struct {
	Morale        float64            `yaml:"morale"`
	Credibility   float64            `yaml:"credibility"`
	Service       float64            `yaml:"service"`
	Backlog       float64            `yaml:"backlog"`
	Share         float64            `yaml:"share"`
	LaborTense    bool               `yaml:"laborTense"`
	SupplyFragile bool               `yaml:"supplyFragile"`
	Pressure      map[string]float64 `yaml:"pressure,omitempty"`
	Balance       state.BalanceSheet `yaml:"balance"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

// LoadConfigurationFromReader loads YAML configuration from an arbitrary
// reader (used by the HTTP layer for uploaded configs).
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

// Default returns a fully populated configuration for a plausible
// mid-sized manufacturer.
func Default() *Configuration {
	c := &Configuration{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Server: ServerConfig{
			Address:      constants.DefaultServerAddress,
			MaxBodyBytes: constants.DefaultMaxBodyBytes,
		},
		Journal: JournalConfig{Dir: "runs"},
		Caps:    state.DefaultCaps(),
		Finance: FinanceConfig{
			Params: finance.DefaultParams(),
			Baseline: Baseline{
				UnitsSold:  10000,
				Price:      100,
				UnitCost:   60,
				Opex:       300000,
				Capex:      50000,
				DSODays:    30,
				DPODays:    30,
				DIODays:    45,
				PeriodDays: 30,
			},
		},
		Starting: StartingConfig{
			Morale:      70,
			Credibility: 65,
			Service:     75,
			Backlog:     5000,
			Share:       12,
			Pressure:    map[string]float64{"supply": 0.1, "regulatory": 0.05},
			Balance: state.BalanceSheet{
				Cash:             1000000,
				Receivables:      250000,
				Inventory:        300000,
				FixedAssets:      2000000,
				Payables:         200000,
				RetainedEarnings: 1350000,
				OtherEquity:      1700000,
			},
		},
	}
	return c
}

// WriteDefault writes the default configuration scaffold to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// MarshalYAML renders the configuration back to YAML (used by the server's
// config export endpoint).
func (c *Configuration) MarshalYAMLBytes() ([]byte, error) {
	return yaml.Marshal(c)
}

// InitialState builds the turn-0 company snapshot a new run starts from.
// The starting balance sheet rides in as the seed financial snapshot so
// the first turn has a prior sheet to read.
func (c *Configuration) InitialState() state.CompanyState {
	s := state.CompanyState{
		Turn:        0,
		Morale:      c.Starting.Morale,
		Credibility: c.Starting.Credibility,
		Service:     c.Starting.Service,
		Backlog:     c.Starting.Backlog,
		Share:       c.Starting.Share,
		Flags: state.Flags{
			LaborTense:    c.Starting.LaborTense,
			SupplyFragile: c.Starting.SupplyFragile,
			Pressure:      c.Starting.Pressure,
		},
		Financials: &state.FinancialSnapshot{
			Balance:     c.Starting.Balance,
			BalanceOK:   true,
			CashReconOK: true,
		},
	}
	monthly := c.Finance.Baseline.Opex
	if monthly < 1 {
		monthly = 1
	}
	s.CashRunwayMonths = c.Starting.Balance.Cash / monthly
	s.ClampBounds()
	return s
}

func (c *Configuration) applyDefaults() {
	def := Default()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = def.Server.MaxBodyBytes
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = def.Journal.Dir
	}
	if c.Caps == (state.Caps{}) {
		c.Caps = def.Caps
	}
	if c.Finance.Params == (finance.Params{}) {
		c.Finance.Params = def.Finance.Params
	}
	if c.Finance.Baseline == (Baseline{}) {
		c.Finance.Baseline = def.Finance.Baseline
	}
	if c.Starting.Balance == (state.BalanceSheet{}) && c.Starting.Morale == 0 {
		c.Starting = def.Starting
	}
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings. Nothing here is fatal; the engines clamp.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if c.Caps.Morale <= 0 || c.Caps.Credibility <= 0 || c.Caps.ServiceRisk <= 0 || c.Caps.BacklogPressure <= 0 {
		warnings = append(warnings, "one or more caps are non-positive; the affected metrics cannot move")
	}
	if c.Finance.Baseline.PeriodDays <= 0 {
		warnings = append(warnings, "baseline periodDays is non-positive; the engine will assume 30 days")
	}
	if c.Finance.Params.MinCashBuffer < 0 {
		warnings = append(warnings, "minCashBuffer is negative; the financing step will never draw debt")
	}
	if sheet := c.Starting.Balance; sheet.Assets() != sheet.LiabilitiesAndEquity() {
		warnings = append(warnings, "starting balance sheet does not balance; the first turn will record a retained earnings plug")
	}
	return warnings
}
