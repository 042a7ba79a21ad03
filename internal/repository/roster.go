package repository

import (
	"strings"

	"PeerBench/internal/domain/models"
	"PeerBench/internal/domain/repository"
	"PeerBench/pkg/config"
)

// DefaultInstitutions is the roster used when the config lists none.
var DefaultInstitutions = []config.Institution{
	{Cert: "33124", Name: "Goldman Sachs Bank USA", ShortName: "Goldman Sachs", Aliases: []string{"GS"}},
	{Cert: "628", Name: "JPMorgan Chase Bank, National Association", ShortName: "JPMorgan Chase", Aliases: []string{"JPM"}, Peer: true},
	{Cert: "3510", Name: "Bank of America, National Association", ShortName: "Bank of America", Aliases: []string{"BAC", "BofA"}, Peer: true},
	{Cert: "3511", Name: "Wells Fargo Bank, National Association", ShortName: "Wells Fargo", Aliases: []string{"WFC"}, Peer: true},
	{Cert: "7213", Name: "Citibank, National Association", ShortName: "Citibank", Aliases: []string{"C", "Citi"}, Peer: true},
	{Cert: "6548", Name: "U.S. Bank National Association", ShortName: "U.S. Bank", Aliases: []string{"USB"}, Peer: true},
	{Cert: "6384", Name: "PNC Bank, National Association", ShortName: "PNC Bank", Aliases: []string{"PNC"}, Peer: true},
	{Cert: "9846", Name: "Truist Bank", ShortName: "Truist", Aliases: []string{"TFC"}, Peer: true},
	{Cert: "4297", Name: "Capital One, National Association", ShortName: "Capital One", Aliases: []string{"COF"}, Peer: true},
}

// Roster resolves certificate numbers, names and aliases against the
// configured institution list. It is read-only after construction.
type Roster struct {
	list  []models.Institution
	index map[string]int
}

func NewRoster(entries []config.Institution) *Roster {
	if len(entries) == 0 {
		entries = DefaultInstitutions
	}
	r := &Roster{index: make(map[string]int, len(entries)*4)}
	for _, e := range entries {
		inst := models.Institution{
			ID:        strings.TrimSpace(e.Cert),
			Name:      e.Name,
			ShortName: e.ShortName,
			Aliases:   e.Aliases,
			PeerGroup: e.Peer,
		}
		i := len(r.list)
		r.list = append(r.list, inst)
		// the first entry to claim a name keeps it
		for _, ref := range append([]string{inst.ID, inst.Name, inst.ShortName}, inst.Aliases...) {
			k := normalizeRef(ref)
			if k == "" {
				continue
			}
			if _, taken := r.index[k]; !taken {
				r.index[k] = i
			}
		}
	}
	return r
}

// NewRosterFromConfig builds the roster from the institutions section.
func NewRosterFromConfig(cfg *config.Config) *Roster {
	return NewRoster(cfg.Institutions)
}

func (r *Roster) Resolve(ref string) (models.Institution, bool) {
	i, ok := r.index[normalizeRef(ref)]
	if !ok {
		return models.Institution{}, false
	}
	return r.list[i], true
}

func (r *Roster) All() []models.Institution {
	return append([]models.Institution(nil), r.list...)
}

func normalizeRef(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

var _ repository.InstitutionDirectory = (*Roster)(nil)
