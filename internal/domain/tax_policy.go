package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxBracket is one federal marginal bracket. A nil UpperLimit means the bracket is unbounded.
type TaxBracket struct {
	UpperLimit *decimal.Decimal `yaml:"upper_limit,omitempty" json:"upperLimit,omitempty"`
	Rate       decimal.Decimal  `yaml:"rate" json:"rate"`
}

// Unbounded reports whether the bracket has no upper limit.
func (b TaxBracket) Unbounded() bool {
	return b.UpperLimit == nil
}

// TaxPolicy holds the federal depreciation and bracket rules for one tax year.
// Policies are built once and never mutated.
type TaxPolicy struct {
	EffectiveYear               int               `yaml:"effective_year" json:"effectiveYear"`
	Section179Limit             decimal.Decimal   `yaml:"section_179_limit" json:"section179Limit"`
	Section179PhaseoutThreshold decimal.Decimal   `yaml:"section_179_phaseout_threshold" json:"section179PhaseoutThreshold"`
	BonusDepreciationPercent    int               `yaml:"bonus_depreciation_percent" json:"bonusDepreciationPercent"`
	MACRS5YearSchedule          []decimal.Decimal `yaml:"macrs_5_year_schedule" json:"macrs5YearSchedule"`
	MACRS7YearSchedule          []decimal.Decimal `yaml:"macrs_7_year_schedule" json:"macrs7YearSchedule"`
	FederalBrackets             []TaxBracket      `yaml:"federal_brackets" json:"federalBrackets"`

	PolicySource string    `yaml:"policy_source" json:"policySource"`
	LastUpdated  time.Time `yaml:"last_updated,omitempty" json:"lastUpdated,omitempty"`
}

// TaxPolicyFile is the on-disk shape of a tax policy table.
type TaxPolicyFile struct {
	Policies []TaxPolicy `yaml:"policies" json:"policies"`
}

// MarginalRateQuote is the federal marginal rate that applies at a taxable income.
type MarginalRateQuote struct {
	TaxYear       int             `json:"taxYear"`
	PolicySource  string          `json:"policySource"`
	TaxableIncome decimal.Decimal `json:"taxableIncome"`
	MarginalRate  decimal.Decimal `json:"marginalRate"`
}
