package main

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/assetplan/internal/calculation"
	"github.com/rgehrsitz/assetplan/internal/domain"
	"github.com/rgehrsitz/assetplan/internal/lifecycle"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const valuationCacheTTL = 24 * time.Hour

func (a *app) assetService() *lifecycle.AssetService {
	svc := lifecycle.NewAssetService(lifecycle.NewMemoryAssetRepository(), lifecycle.NewMemoryLoanRepository(), nil)
	svc.Now = a.now
	svc.Schedules.Now = a.now
	svc.LoanEngine = a.loanEngine()
	svc.SetLogger(a.logger)
	return svc
}

// valuationProvider layers the cache and rate limiter over stored market quotes.
func (a *app) valuationProvider(quotes []domain.MarketQuote) (lifecycle.ValuationProvider, func()) {
	var cache lifecycle.ValuationCache = lifecycle.NewMemoryCache()
	closeFn := func() {}
	if a.settings.RedisAddr != "" {
		redisCache := lifecycle.NewRedisCache(a.settings.RedisAddr, valuationCacheTTL)
		redisCache.Logger = a.logger
		cache = redisCache
		closeFn = func() { _ = redisCache.Close() }
	}
	static := lifecycle.NewStaticValuationProvider(quotes)
	routed := lifecycle.RoutedValuationProvider{"Equipment": static, "Vehicle": static}
	limited := lifecycle.NewRateLimitedValuationProvider(routed, a.settings.ValuationRPS)
	cached := lifecycle.NewCachedValuationProvider(limited, cache)
	cached.Logger = a.logger
	return cached, closeFn
}

func scheduleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule [assets-file]",
		Short: "Generate monthly depreciation schedules for an asset list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := a.parser.LoadAssets(args[0])
			if err != nil {
				return err
			}
			svc := a.assetService()
			ctx := cmd.Context()

			quotesFile, _ := cmd.Flags().GetString("quotes")
			if quotesFile != "" {
				quotes, err := a.parser.LoadMarketQuotes(quotesFile)
				if err != nil {
					return err
				}
				provider, closeFn := a.valuationProvider(quotes)
				defer closeFn()
				svc.Valuations = provider
			}

			ids := make([]string, 0, len(assets))
			for _, asset := range assets {
				saved, err := svc.AddAsset(ctx, asset)
				if err != nil {
					return fmt.Errorf("asset %q: %w", asset.Name, err)
				}
				ids = append(ids, saved.ID)
			}

			var summary *domain.PortfolioValuation
			if svc.Valuations != nil {
				_, s, err := svc.RevalueAll(ctx)
				if err != nil {
					return err
				}
				summary = &s
			}

			report := make([]domain.Asset, 0, len(ids))
			for _, id := range ids {
				asset, err := svc.Assets.GetAsset(ctx, id)
				if err != nil {
					return err
				}
				if asset.Schedule, err = svc.Assets.GetDepreciationSchedule(ctx, id); err != nil {
					return err
				}
				report = append(report, asset)
			}
			if format, _ := cmd.Flags().GetString("format"); summary != nil && format == "console" {
				return a.render(cmd, report, *summary)
			}
			return a.render(cmd, report)
		},
	}
	cmd.Flags().String("quotes", "", "Market quote YAML file used to value the assets")
	return cmd
}

// loadLoan creates the selected loan from a loan file in a fresh service.
func loadLoan(cmd *cobra.Command, a *app, path string) (*lifecycle.AssetService, domain.Loan, error) {
	loans, err := a.parser.LoadLoans(path)
	if err != nil {
		return nil, domain.Loan{}, err
	}
	loanID, _ := cmd.Flags().GetString("loan-id")
	var selected *domain.Loan
	switch {
	case loanID != "":
		for i := range loans {
			if loans[i].ID == loanID {
				selected = &loans[i]
			}
		}
		if selected == nil {
			return nil, domain.Loan{}, fmt.Errorf("loan %q not found in %s", loanID, path)
		}
	case len(loans) == 1:
		selected = &loans[0]
	default:
		return nil, domain.Loan{}, fmt.Errorf("%s contains %d loans; choose one with --loan-id", path, len(loans))
	}

	svc := a.assetService()
	created, err := svc.CreateLoan(cmd.Context(), *selected)
	if err != nil {
		return nil, domain.Loan{}, err
	}
	return svc, created, nil
}

func amortizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amortize [loans-file]",
		Short: "Print the amortization schedule of a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, loan, err := loadLoan(cmd, a, args[0])
			if err != nil {
				return err
			}
			lines, err := svc.LoanSchedule(cmd.Context(), loan.ID)
			if err != nil {
				return err
			}
			return a.render(cmd, lines)
		},
	}
	cmd.Flags().String("loan-id", "", "Loan to use when the file holds several")
	return cmd
}

func payoffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payoff [loans-file]",
		Short: "Calculate the early payoff amount of a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payoffDate, _ := cmd.Flags().GetString("date")
			if payoffDate == "" {
				payoffDate = a.now().Format(domain.DateLayout)
			}
			penalty, err := decimalFlag(cmd, "penalty")
			if err != nil {
				return err
			}
			svc, loan, err := loadLoan(cmd, a, args[0])
			if err != nil {
				return err
			}
			report, err := svc.PayoffLoan(cmd.Context(), loan.ID, payoffDate, penalty)
			if err != nil {
				return err
			}
			return a.render(cmd, report)
		},
	}
	cmd.Flags().String("loan-id", "", "Loan to use when the file holds several")
	cmd.Flags().String("date", "", "Payoff date YYYY-MM-DD (default: today)")
	cmd.Flags().String("penalty", "0", "Prepayment penalty as a percent of the remaining balance (2 = 2%)")
	return cmd
}

func saleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Calculate §1245 recapture, §1231 gain and tax on an asset sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			amounts := map[string]decimal.Decimal{}
			for _, flag := range []string{"cost", "price", "fees", "depreciation", "ordinary-rate", "capital-gains-rate"} {
				v, err := decimalFlag(cmd, flag)
				if err != nil {
					return err
				}
				amounts[flag] = v
			}

			calc := calculation.NewBasisRecaptureCalculator()
			calc.Now = a.now
			accumulated := amounts["depreciation"]
			if method, _ := cmd.Flags().GetString("estimate-method"); method != "" {
				purchased, _ := cmd.Flags().GetString("purchase-date")
				purchaseDate, err := a.dateParser().ParseDay(purchased)
				if err != nil {
					return err
				}
				life, _ := cmd.Flags().GetInt("life")
				if accumulated, err = calc.EstimateAccumulatedDepreciation(amounts["cost"], purchaseDate, life, method); err != nil {
					return err
				}
				a.logger.Infof("estimated accumulated depreciation %s using %s", accumulated.StringFixed(2), method)
			}

			in := calculation.SaleInput{
				AssetName:               name,
				OriginalCost:            amounts["cost"],
				AccumulatedDepreciation: accumulated,
				SalePrice:               amounts["price"],
				TransactionFees:         amounts["fees"],
				OrdinaryRate:            amounts["ordinary-rate"],
				CapitalGainsRate:        amounts["capital-gains-rate"],
			}
			if saleDate, _ := cmd.Flags().GetString("date"); saleDate != "" {
				day, err := a.dateParser().ParseDay(saleDate)
				if err != nil {
					return err
				}
				in.SaleDate = &day
			}

			result, err := calc.CalculateSaleTaxImpact(in)
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
	flags := cmd.Flags()
	flags.String("name", "Asset", "Asset name")
	flags.String("cost", "0", "Original cost")
	flags.String("price", "0", "Sale price")
	flags.String("fees", "0", "Transaction fees")
	flags.String("depreciation", "0", "Accumulated depreciation taken")
	flags.String("ordinary-rate", "0.24", "Ordinary income tax rate (fraction)")
	flags.String("capital-gains-rate", "0.15", "Capital gains tax rate (fraction)")
	flags.String("date", "", "Sale date YYYY-MM-DD")
	flags.String("estimate-method", "", "Estimate accumulated depreciation instead (MACRS_GDS or STRAIGHT_LINE)")
	flags.String("purchase-date", "", "Purchase date for --estimate-method")
	flags.Int("life", 5, "Useful life in years for --estimate-method")
	return cmd
}

func scenarioCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [scenario-file]",
		Short: "Analyze a liquidate-and-replace scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.parser.LoadScenarioFromFile(args[0])
			if err != nil {
				return err
			}
			policies, err := a.policies(cmd)
			if err != nil {
				return err
			}
			engine := calculation.NewScenarioEngine(policies)
			engine.SetLogger(a.logger)
			engine.SetClock(a.now)
			engine.Dates.Mode = a.settings.DateMode

			results, err := engine.CalculateScenario(*req)
			if err != nil {
				return err
			}
			return a.render(cmd, results)
		},
	}
}

func loanImpactCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loan-impact [request-file]",
		Short: "Analyze paying off a loan by selling its asset and financing a replacement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.parser.LoadLoanImpactFromFile(args[0])
			if err != nil {
				return err
			}
			impact, err := calculation.NewLoanImpactCalculator(a.loanEngine()).CalculateTotalScenarioImpact(*req)
			if err != nil {
				return err
			}
			return a.render(cmd, impact)
		},
	}
}

func policyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show the tax policies in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := a.policies(cmd)
			if err != nil {
				return err
			}
			year, _ := cmd.Flags().GetInt("year")
			if cmd.Flags().Changed("income") {
				income, err := decimalFlag(cmd, "income")
				if err != nil {
					return err
				}
				if year == 0 {
					year = a.now().Year()
				}
				return a.render(cmd, domain.MarginalRateQuote{
					TaxYear:       year,
					PolicySource:  provider.PolicyForYear(year).PolicySource,
					TaxableIncome: income,
					MarginalRate:  provider.MarginalRate(income, year),
				})
			}

			var policies []domain.TaxPolicy
			if year != 0 {
				policies = append(policies, provider.PolicyForYear(year))
			} else {
				for _, y := range provider.Years() {
					policies = append(policies, provider.PolicyForYear(y))
				}
			}
			return a.render(cmd, policies)
		},
	}
	cmd.Flags().Int("year", 0, "Tax year (latest known policy applies to later years)")
	cmd.Flags().String("income", "", "Show the marginal federal rate at this taxable income instead of the policy table")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate an input file without calculating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			path := args[0]
			var err error
			switch kind {
			case "scenario":
				_, err = a.parser.LoadScenarioFromFile(path)
			case "loan-impact":
				_, err = a.parser.LoadLoanImpactFromFile(path)
			case "assets":
				var assets []domain.Asset
				if assets, err = a.parser.LoadAssets(path); err == nil {
					for _, asset := range assets {
						if _, err = calculation.ParamsForAsset(asset); err != nil {
							err = fmt.Errorf("asset %q: %w", asset.Name, err)
							break
						}
					}
				}
			case "loans":
				_, err = a.parser.LoadLoans(path)
			case "policies":
				var policies []domain.TaxPolicy
				if policies, err = a.parser.LoadTaxPolicies(path); err == nil {
					_, err = calculation.NewTaxPolicyProvider(policies...)
				}
			case "quotes":
				_, err = a.parser.LoadMarketQuotes(path)
			default:
				return fmt.Errorf("unknown kind %q (expected scenario, loan-impact, assets, loans, policies or quotes)", kind)
			}
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is a valid %s file\n", path, kind)
			return nil
		},
	}
	cmd.Flags().String("kind", "scenario", "File kind: scenario, loan-impact, assets, loans, policies, quotes")
	return cmd
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	return v, nil
}
