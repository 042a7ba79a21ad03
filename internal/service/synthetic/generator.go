package synthetic

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"

	"PeerBench/internal/domain/models"
)

// profile bounds a ratio metric, or sizes a dollar metric as a share of
// total assets when share is set.
type profile struct {
	lo, hi float64
	share  float64
}

var profiles = map[string]profile{
	"return_on_assets":               {lo: 0.5, hi: 1.5},
	"return_on_equity":               {lo: 5, hi: 15},
	"efficiency_ratio":               {lo: 50, hi: 70},
	"net_interest_margin":            {lo: 2, hi: 4},
	"leverage_ratio":                 {lo: 7, hi: 11},
	"total_risk_based_capital_ratio": {lo: 11, hi: 16},
	"net_loans_to_deposits":          {lo: 60, hi: 90},
	"net_loans_to_assets":            {lo: 45, hi: 65},
	"noncurrent_loans_ratio":         {lo: 0.3, hi: 1.5},
	"net_charge_off_ratio":           {lo: 0.1, hi: 1.0},
	"loss_allowance_ratio":           {lo: 1, hi: 2},
	"nonperforming_assets_ratio":     {lo: 0.2, hi: 1.0},
	"earning_assets_ratio":           {lo: 85, hi: 95},
	"re_loans_to_tier1_acl":          {lo: 200, hi: 350},
	"ci_loans_to_tier1_acl":          {lo: 100, hi: 200},
	"credit_cards_to_tier1_acl":      {lo: 30, hi: 80},
	"agriculture_loans_to_tier1_acl": {lo: 2, hi: 10},
	"construction_to_tier1_acl":      {lo: 20, hi: 60},
	"cre_to_tier1_acl":               {lo: 100, hi: 250},
	"nco_to_acl":                     {lo: 2, hi: 10},
	"noo_cre_growth_3y":              {lo: -5, hi: 25},

	"total_assets":              {share: 1},
	"total_deposits":            {share: 0.8},
	"total_loans":               {share: 0.6},
	"net_loans":                 {share: 0.588},
	"total_securities":          {share: 0.2},
	"tier1_capital":             {share: 0.1},
	"net_income":                {share: 0.01},
	"allowance_for_credit_loss": {share: 0.012},
}

var defaultProfile = profile{lo: 0, hi: 100}

// Asset bases in thousands of dollars, picked per institution.
var assetBases = []float64{50_000_000, 100_000_000, 500_000_000}

// epoch anchors asset growth so overlapping windows agree on shared quarters.
var epoch = models.Quarter{Year: 2000, Q: 1}

// Generator produces deterministic stand-in data. Every value is a pure
// function of (seed, institution, metric, quarter).
type Generator struct {
	seed uint64
}

func New(seed uint64) *Generator {
	return &Generator{seed: seed}
}

// Generate fills every quarter of the key's window for every metric.
func (g *Generator) Generate(key models.SeriesKey) models.InstitutionData {
	periods := models.QuarterRange(key.Start, key.End)
	series := make([]models.MetricSeries, 0, len(key.Metrics))
	for _, metric := range key.Metrics {
		points := make([]models.Point, len(periods))
		for i, q := range periods {
			points[i] = models.Point{Period: q, Value: g.Value(key.InstitutionID, metric, q)}
		}
		series = append(series, models.NewMetricSeries(key.InstitutionID, metric, points, models.SourceSynthetic))
	}
	return models.InstitutionData{
		InstitutionID: key.InstitutionID,
		Start:         key.Start,
		End:           key.End,
		Series:        series,
		Source:        models.SourceSynthetic,
	}
}

// Value is the synthetic observation for one cell.
func (g *Generator) Value(institutionID, metric string, q models.Quarter) float64 {
	p, ok := profiles[metric]
	if !ok {
		p = defaultProfile
	}
	if p.share > 0 {
		return g.assets(institutionID, q) * p.share * g.uniform(0.9, 1.1, institutionID, metric, q.String())
	}

	// Each bank sits at a stable level inside the band and wobbles around it.
	level := g.uniform(0.2, 0.8, institutionID, metric)
	noise := g.uniform(-0.1, 0.1, institutionID, metric, q.String())
	pos := level + noise
	return p.lo + (p.hi-p.lo)*pos
}

// assets grows 5% a year from the institution's base with +/-5% jitter.
func (g *Generator) assets(institutionID string, q models.Quarter) float64 {
	r := g.rng(institutionID, "asset_base")
	base := assetBases[r.IntN(len(assetBases))]
	years := float64(q.Index()-epoch.Index()) / 4
	growth := 1 + 0.05*years
	return base * growth * g.uniform(0.95, 1.05, institutionID, "total_assets", q.String())
}

func (g *Generator) uniform(lo, hi float64, parts ...string) float64 {
	return lo + (hi-lo)*g.rng(parts...).Float64()
}

func (g *Generator) rng(parts ...string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strconv.FormatUint(g.seed, 10)))
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	return rand.New(rand.NewPCG(g.seed, h.Sum64()))
}
