package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AssetFile is the on-disk shape of an asset list.
type AssetFile struct {
	Assets []domain.Asset `yaml:"assets" json:"assets"`
}

// LoanFile is the on-disk shape of a loan list.
type LoanFile struct {
	Loans []domain.Loan `yaml:"loans" json:"loans"`
}

// InputParser handles parsing of input files. YAML and JSON are both accepted.
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

func (ip *InputParser) decode(filename string, out interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return nil
}

// LoadScenarioFromFile loads a liquidation and replacement scenario request.
func (ip *InputParser) LoadScenarioFromFile(filename string) (*domain.ScenarioRequest, error) {
	var req domain.ScenarioRequest
	if err := ip.decode(filename, &req); err != nil {
		return nil, err
	}
	if err := ip.ValidateScenarioRequest(&req); err != nil {
		return nil, fmt.Errorf("scenario validation failed: %w", err)
	}
	return &req, nil
}

// LoadLoanImpactFromFile loads a loan-impact request.
func (ip *InputParser) LoadLoanImpactFromFile(filename string) (*domain.LoanImpactRequest, error) {
	var req domain.LoanImpactRequest
	if err := ip.decode(filename, &req); err != nil {
		return nil, err
	}
	if err := ip.ValidateLoanImpactRequest(&req); err != nil {
		return nil, fmt.Errorf("loan impact validation failed: %w", err)
	}
	return &req, nil
}

// LoadTaxPolicies loads a tax policy table. Structural policy checks happen when the
// policies are handed to calculation.NewTaxPolicyProvider.
func (ip *InputParser) LoadTaxPolicies(filename string) ([]domain.TaxPolicy, error) {
	var file domain.TaxPolicyFile
	if err := ip.decode(filename, &file); err != nil {
		return nil, err
	}
	if len(file.Policies) == 0 {
		return nil, fmt.Errorf("%s contains no tax policies", filename)
	}
	return file.Policies, nil
}

// LoadAssets loads an asset list.
func (ip *InputParser) LoadAssets(filename string) ([]domain.Asset, error) {
	var file AssetFile
	if err := ip.decode(filename, &file); err != nil {
		return nil, err
	}
	for i := range file.Assets {
		if err := ip.ValidateAsset(&file.Assets[i]); err != nil {
			return nil, fmt.Errorf("asset %d (%s) validation failed: %w", i, file.Assets[i].Name, err)
		}
	}
	return file.Assets, nil
}

// LoadLoans loads a loan list.
func (ip *InputParser) LoadLoans(filename string) ([]domain.Loan, error) {
	var file LoanFile
	if err := ip.decode(filename, &file); err != nil {
		return nil, err
	}
	for i := range file.Loans {
		if err := ip.ValidateLoan(&file.Loans[i]); err != nil {
			return nil, fmt.Errorf("loan %d (%s) validation failed: %w", i, file.Loans[i].ID, err)
		}
	}
	return file.Loans, nil
}

// LoadMarketQuotes loads stored market valuations.
func (ip *InputParser) LoadMarketQuotes(filename string) ([]domain.MarketQuote, error) {
	var file domain.MarketQuoteFile
	if err := ip.decode(filename, &file); err != nil {
		return nil, err
	}
	for i, q := range file.Quotes {
		if q.Manufacturer == "" || q.Model == "" {
			return nil, fmt.Errorf("quote %d: manufacturer and model are required", i)
		}
		if q.FairMarketValue.IsNegative() {
			return nil, fmt.Errorf("quote %d (%s %s): fairMarketValue must not be negative", i, q.Manufacturer, q.Model)
		}
	}
	return file.Quotes, nil
}

// ValidateScenarioRequest checks the request shape. Method tags are not checked here;
// the scenario engine reports unknown tags as warnings.
func (ip *InputParser) ValidateScenarioRequest(req *domain.ScenarioRequest) error {
	if len(req.AssetsToSell) == 0 && len(req.ReplacementAssets) == 0 {
		return fmt.Errorf("scenario must sell or replace at least one asset")
	}
	if err := validateRate("marginalTaxRate", req.MarginalTaxRate); err != nil {
		return err
	}
	if req.CapitalGainsRate != nil {
		if err := validateRate("capitalGainsRate", *req.CapitalGainsRate); err != nil {
			return err
		}
	}
	if req.OverrideBonusPercent != nil && (*req.OverrideBonusPercent < 0 || *req.OverrideBonusPercent > 100) {
		return fmt.Errorf("overrideBonusPercent must be between 0 and 100, got %d", *req.OverrideBonusPercent)
	}
	if req.OverrideSection179Limit != nil && req.OverrideSection179Limit.IsNegative() {
		return fmt.Errorf("overrideSection179Limit must not be negative")
	}

	for i, sale := range req.AssetsToSell {
		if sale.AssetName == "" {
			return fmt.Errorf("assetsToSell[%d]: assetName is required", i)
		}
		if sale.OriginalCost.IsNegative() || sale.SalePrice.IsNegative() || sale.TransactionFees.IsNegative() {
			return fmt.Errorf("assetsToSell[%d] (%s): amounts must not be negative", i, sale.AssetName)
		}
	}
	for i, r := range req.ReplacementAssets {
		if r.Name == "" {
			return fmt.Errorf("replacementAssets[%d]: name is required", i)
		}
		if r.Cost.IsNegative() {
			return fmt.Errorf("replacementAssets[%d] (%s): cost must not be negative", i, r.Name)
		}
		if r.BusinessUsePercent.IsNegative() || r.BusinessUsePercent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("replacementAssets[%d] (%s): businessUsePercent must be between 0 and 100", i, r.Name)
		}
		if r.UsefulLife != nil && *r.UsefulLife <= 0 {
			return fmt.Errorf("replacementAssets[%d] (%s): usefulLife must be positive", i, r.Name)
		}
	}
	return nil
}

// ValidateLoanImpactRequest checks the request shape.
func (ip *InputParser) ValidateLoanImpactRequest(req *domain.LoanImpactRequest) error {
	if req.LiquidationDate == "" {
		return fmt.Errorf("liquidationDate is required")
	}
	if req.AssetSalePrice.IsNegative() || req.ReplacementAssetPrice.IsNegative() || req.TransactionFees.IsNegative() {
		return fmt.Errorf("prices and fees must not be negative")
	}
	if req.PrepaymentPenaltyRate.IsNegative() {
		return fmt.Errorf("prepaymentPenaltyRate must not be negative")
	}
	for _, loan := range []*domain.Loan{req.ExistingLoan, req.ReplacementLoan} {
		if loan == nil {
			continue
		}
		if err := ip.ValidateLoan(loan); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAsset checks an asset record.
func (ip *InputParser) ValidateAsset(asset *domain.Asset) error {
	if asset.Name == "" {
		return fmt.Errorf("name is required")
	}
	if asset.DepreciationMethod == "" {
		return fmt.Errorf("depreciationMethod is required")
	}
	if asset.BookValue.IsNegative() {
		return fmt.Errorf("bookValue must not be negative")
	}
	if asset.SalvageValue.IsNegative() || asset.SalvageValue.GreaterThan(asset.BookValue) {
		return fmt.Errorf("salvageValue must be between 0 and bookValue")
	}
	return nil
}

// ValidateLoan checks a loan record.
func (ip *InputParser) ValidateLoan(loan *domain.Loan) error {
	if loan.Principal.IsNegative() {
		return fmt.Errorf("loanAmount must not be negative")
	}
	if loan.AnnualRatePercent.IsNegative() || loan.AnnualRatePercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("interestRate must be a percentage between 0 and 100")
	}
	if loan.TermYears <= 0 {
		return fmt.Errorf("loanTermYears must be positive")
	}
	if loan.StartDate == "" {
		return fmt.Errorf("loanStartDate is required")
	}
	return nil
}

func validateRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be a fraction between 0 and 1, got %s", name, rate)
	}
	return nil
}
