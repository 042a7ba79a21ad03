package fdic

import (
	"fmt"
	"sort"

	"PeerBench/internal/domain/models"
	"PeerBench/internal/domain/repository"
)

type metricDef struct {
	info models.MetricInfo
	// field is read directly when derive is nil.
	field  string
	derive deriveFunc
	// lookback is how many quarters before the window the derivation reads.
	lookback int
}

// Catalog maps metric names to FDIC financial fields.
type Catalog struct {
	defs   []metricDef
	byName map[string]int
}

func direct(name, label, field string, unit models.Unit, higherIsBetter bool, desc string) metricDef {
	return metricDef{
		info: models.MetricInfo{
			Name: name, Label: label, Unit: unit, Description: desc,
			Fields: []string{field}, HigherIsBetter: higherIsBetter,
		},
		field: field,
	}
}

func derived(name, label string, fields []string, higherIsBetter bool, lookback int, fn deriveFunc, desc string) metricDef {
	return metricDef{
		info: models.MetricInfo{
			Name: name, Label: label, Unit: models.UnitPercent, Description: desc,
			Fields: fields, Derived: true, HigherIsBetter: higherIsBetter,
		},
		derive:   fn,
		lookback: lookback,
	}
}

// NewCatalog builds the built-in metric catalogue.
func NewCatalog() *Catalog {
	defs := []metricDef{
		direct("return_on_assets", "Return on Assets", "ROA", models.UnitPercent, true,
			"Net income after taxes and extraordinary items as a percent of average total assets."),
		direct("return_on_equity", "Return on Equity", "ROE", models.UnitPercent, true,
			"Annualized net income as a percent of average equity capital."),
		direct("efficiency_ratio", "Efficiency Ratio", "EEFFR", models.UnitPercent, false,
			"Noninterest expense less amortization of intangibles as a percent of net interest income plus noninterest income."),
		direct("net_interest_margin", "Net Interest Margin", "NIMY", models.UnitPercent, true,
			"Total interest income less total interest expense as a percent of average earning assets."),
		direct("total_assets", "Total Assets", "ASSET", models.UnitThousands, true,
			"Sum of all assets owned by the institution."),
		direct("total_deposits", "Total Deposits", "DEP", models.UnitThousands, true,
			"Sum of all deposits including demand, savings and time deposits."),
		direct("total_loans", "Total Loans and Leases", "LNLSGR", models.UnitThousands, true,
			"Gross loans and leases before deduction of the allowance."),
		direct("net_loans", "Net Loans and Leases", "LNLSNET", models.UnitThousands, true,
			"Loans and leases net of unearned income and the allowance."),
		direct("total_securities", "Total Securities", "SC", models.UnitThousands, true,
			"Held-to-maturity plus available-for-sale securities."),
		direct("tier1_capital", "Tier 1 (Core) Capital", "RBCT1J", models.UnitThousands, true,
			"Common equity tier 1 plus additional tier 1 capital."),
		direct("net_income", "Net Income", "NETINC", models.UnitThousands, true,
			"Net income attributable to the bank, year to date."),
		direct("allowance_for_credit_loss", "Allowance for Credit Loss", "LNATRES", models.UnitThousands, true,
			"Allowance for loan and lease losses."),
		direct("leverage_ratio", "Leverage (Core Capital) Ratio", "RBC1AAJ", models.UnitPercent, true,
			"Tier 1 capital as a percent of average total assets."),
		direct("total_risk_based_capital_ratio", "Total Risk-Based Capital Ratio", "RBCRWAJ", models.UnitPercent, true,
			"Total risk-based capital as a percent of risk-weighted assets."),
		direct("net_loans_to_deposits", "Net Loans and Leases to Deposits", "LNLSDEPR", models.UnitPercent, true,
			"Net loans and leases as a percent of total deposits."),
		direct("net_loans_to_assets", "Net Loans and Leases to Assets", "LNLSNTV", models.UnitPercent, true,
			"Net loans and leases as a percent of total assets."),
		direct("noncurrent_loans_ratio", "Noncurrent Loans to Total Loans", "NCLNLSR", models.UnitPercent, false,
			"Loans 90 days or more past due plus nonaccrual loans as a percent of gross loans."),
		direct("net_charge_off_ratio", "Net Charge-Offs to Loans", "NTLNLSR", models.UnitPercent, false,
			"Annualized net charge-offs as a percent of average total loans and leases."),
		direct("loss_allowance_ratio", "Loss Allowance to Loans", "LNATRESR", models.UnitPercent, true,
			"Allowance for loan and lease losses as a percent of total loans and leases."),
		direct("nonperforming_assets_ratio", "Nonperforming Assets to Assets", "NPERFV", models.UnitPercent, false,
			"Noncurrent assets plus other real estate owned as a percent of total assets."),
		direct("earning_assets_ratio", "Earning Assets to Assets", "ERNASTR", models.UnitPercent, true,
			"Interest-earning assets as a percent of total assets."),

		derived("re_loans_to_tier1_acl", "Real Estate Loans to Tier 1 + ACL",
			capitalFields("LNRE"), false, 0, capitalRatio("LNRE"),
			"Loans secured by real estate as a percent of tier 1 capital plus allowance, net of the CECL transition amount."),
		derived("ci_loans_to_tier1_acl", "C&I Loans to Tier 1 + ACL",
			capitalFields("LNCI"), false, 0, capitalRatio("LNCI"),
			"Commercial and industrial loans as a percent of tier 1 capital plus allowance."),
		derived("credit_cards_to_tier1_acl", "Credit Cards to Tier 1 + ACL",
			capitalFields("LNCRCD"), false, 0, capitalRatio("LNCRCD"),
			"Credit card loans as a percent of tier 1 capital plus allowance."),
		derived("agriculture_loans_to_tier1_acl", "Agriculture Loans to Tier 1 + ACL",
			capitalFields("LNAG"), false, 0, capitalRatio("LNAG"),
			"Agricultural production loans as a percent of tier 1 capital plus allowance."),
		derived("construction_to_tier1_acl", "RE Construction and Land Development to Tier 1 + ACL",
			capitalFields("LNRECONS"), false, 0, capitalRatio("LNRECONS"),
			"Construction and land development loans as a percent of tier 1 capital plus allowance."),
		derived("cre_to_tier1_acl", "Commercial RE to Tier 1 + ACL",
			capitalFields(creFields...), false, 0, capitalRatio(creFields...),
			"Construction, multifamily, nonresidential and unsecured commercial real estate loans as a percent of tier 1 capital plus allowance."),
		derived("nco_to_acl", "Net Charge-Offs to Allowance",
			[]string{"NTLNLSQ", "LNATRES"}, false, 0, chargeOffsToAllowance,
			"Quarterly net charge-offs as a percent of the allowance for credit loss."),
		derived("noo_cre_growth_3y", "Non-Owner Occupied CRE 3-Year Growth",
			nonOwnerCREFields, false, 12, nonOwnerCREGrowth,
			"Growth of non-owner occupied commercial real estate loans over the trailing twelve quarters."),
	}

	c := &Catalog{defs: defs, byName: make(map[string]int, len(defs))}
	for i, d := range defs {
		c.byName[d.info.Name] = i
	}
	return c
}

func (c *Catalog) Lookup(name string) (models.MetricInfo, bool) {
	i, ok := c.byName[name]
	if !ok {
		return models.MetricInfo{}, false
	}
	return c.defs[i].info, true
}

func (c *Catalog) All() []models.MetricInfo {
	out := make([]models.MetricInfo, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.info
	}
	return out
}

func (c *Catalog) def(name string) (metricDef, error) {
	i, ok := c.byName[name]
	if !ok {
		return metricDef{}, fmt.Errorf("unknown metric %q", name)
	}
	return c.defs[i], nil
}

// plan returns the sorted FDIC field list and the lookback needed for metrics.
func (c *Catalog) plan(metrics []string) ([]string, int, error) {
	set := map[string]struct{}{"CERT": {}, "REPDTE": {}}
	lookback := 0
	for _, m := range metrics {
		d, err := c.def(m)
		if err != nil {
			return nil, 0, err
		}
		for _, f := range d.info.Fields {
			set[f] = struct{}{}
		}
		if d.lookback > lookback {
			lookback = d.lookback
		}
	}
	fields := make([]string, 0, len(set))
	for f := range set {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields, lookback, nil
}

var _ repository.MetricCatalog = (*Catalog)(nil)
