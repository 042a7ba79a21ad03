package models

import (
	"regexp"
	"strings"

	"PeerBench/pkg/util"
)

var certPattern = regexp.MustCompile(`^\d{1,10}$`)

// IsCert reports whether s looks like an FDIC certificate number.
func IsCert(s string) bool { return certPattern.MatchString(s) }

// CompareRequest is the inbound payload of the comparison endpoint. Lists may
// be repeated parameters or comma separated.
type CompareRequest struct {
	Focal   string   `query:"focal" json:"focal" validate:"required"`
	Peers   []string `query:"peers" json:"peers" validate:"required,min=1,dive,required"`
	Metrics []string `query:"metrics" json:"metrics" default:"[\"return_on_assets\"]" validate:"min=1,dive,required"`
	Start   string   `query:"start" json:"start"`
	End     string   `query:"end" json:"end"`
}

// Normalize flattens comma lists and canonicalises metric names.
func (r *CompareRequest) Normalize() {
	r.Focal = strings.TrimSpace(r.Focal)
	r.Peers = util.SplitList(r.Peers...)
	metrics := util.SplitList(r.Metrics...)
	for i, m := range metrics {
		metrics[i] = strings.ToLower(m)
	}
	r.Metrics = util.SplitList(metrics...)
}

// Query is a validated comparison request with identifiers resolved.
type Query struct {
	Focal   string
	Peers   []string
	Metrics []string
	Start   Quarter
	End     Quarter
}

// QueryLimits bounds what a single query may ask for.
type QueryLimits struct {
	MaxPeers    int
	MaxQuarters int
}

// Validate checks structural rules only. Identifier resolution and metric
// catalogue membership are checked by the caller that owns those tables.
func (q Query) Validate(limits QueryLimits) error {
	if !IsCert(q.Focal) {
		return invalid("focal", "%q is not a certificate number", q.Focal)
	}
	if len(q.Peers) == 0 {
		return invalid("peers", "at least one peer is required")
	}
	if limits.MaxPeers > 0 && len(q.Peers) > limits.MaxPeers {
		return invalid("peers", "at most %d peers allowed, got %d", limits.MaxPeers, len(q.Peers))
	}
	seen := make(map[string]struct{}, len(q.Peers))
	for _, p := range q.Peers {
		if !IsCert(p) {
			return invalid("peers", "%q is not a certificate number", p)
		}
		if p == q.Focal {
			return invalid("peers", "focal institution %s cannot be its own peer", p)
		}
		if _, dup := seen[p]; dup {
			return invalid("peers", "duplicate peer %s", p)
		}
		seen[p] = struct{}{}
	}
	if len(q.Metrics) == 0 {
		return invalid("metrics", "at least one metric is required")
	}
	if !q.Start.Valid() {
		return invalid("start", "missing or malformed start period")
	}
	if !q.End.Valid() {
		return invalid("end", "missing or malformed end period")
	}
	if q.End.Before(q.Start) {
		return invalid("end", "end %s precedes start %s", q.End, q.Start)
	}
	if limits.MaxQuarters > 0 && QuarterSpan(q.Start, q.End) > limits.MaxQuarters {
		return invalid("start", "range spans %d quarters, limit is %d", QuarterSpan(q.Start, q.End), limits.MaxQuarters)
	}
	return nil
}
