package fdic

import (
	"time"

	"PeerBench/internal/domain/models"
	"PeerBench/pkg/util"
)

const (
	// minCapitalBase is in thousands of dollars, as reported.
	minCapitalBase   = 1_000_000
	minAllowance     = 1_000
	minPriorCREValue = 1_000
)

// CECL transition adjustments apply to report dates from this day on.
var ceclEffective = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	capitalBaseFields = []string{"RBCT1J", "LNATRES", "CT1BADJ", "EQ", "EQPP"}
	creFields         = []string{"LNRECONS", "LNREMULT", "LNRENRES", "LNCOMRE"}
	nonOwnerCREFields = []string{"LNRECONS", "LNREMULT", "LNRENROT", "LNCOMRE"}
)

// record is one quarterly row of the financials endpoint.
type record struct {
	period models.Quarter
	fields map[string]interface{}
}

func (r record) value(field string) (float64, bool) {
	return util.Float(r.fields[field])
}

// valueOrZero treats a missing component of a sum as zero.
func (r record) valueOrZero(field string) float64 {
	v, _ := r.value(field)
	return v
}

func (r record) sum(fields ...string) float64 {
	var total float64
	for _, f := range fields {
		total += r.valueOrZero(f)
	}
	return total
}

// history returns the row for an earlier quarter, if it was fetched.
type history func(q models.Quarter) (record, bool)

type deriveFunc func(r record, prior history) (float64, bool)

func capitalFields(numerator ...string) []string {
	return append(append([]string(nil), numerator...), capitalBaseFields...)
}

// capitalBase is tier 1 capital plus the allowance, less the CECL
// transition amount once it applies.
func capitalBase(r record) (float64, bool) {
	tier1, ok := r.value("RBCT1J")
	if !ok {
		return 0, false
	}
	base := tier1 + r.valueOrZero("LNATRES")
	if !r.period.End().Before(ceclEffective) {
		base -= r.valueOrZero("CT1BADJ") - r.valueOrZero("EQ") + r.valueOrZero("EQPP")
	}
	return base, true
}

func capitalRatio(numerator ...string) deriveFunc {
	return func(r record, _ history) (float64, bool) {
		base, ok := capitalBase(r)
		if !ok || base <= minCapitalBase {
			return 0, false
		}
		return r.sum(numerator...) / base * 100, true
	}
}

func chargeOffsToAllowance(r record, _ history) (float64, bool) {
	acl, ok := r.value("LNATRES")
	if !ok || acl <= minAllowance {
		return 0, false
	}
	nco, ok := r.value("NTLNLSQ")
	if !ok {
		return 0, false
	}
	return nco / acl * 100, true
}

func nonOwnerCREGrowth(r record, prior history) (float64, bool) {
	old, ok := prior(models.QuarterFromIndex(r.period.Index() - 12))
	if !ok {
		return 0, false
	}
	before := old.sum(nonOwnerCREFields...)
	if before <= minPriorCREValue {
		return 0, false
	}
	return (r.sum(nonOwnerCREFields...)/before - 1) * 100, true
}
