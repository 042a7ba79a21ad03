package models

// Institution is an FDIC insured bank identified by its certificate number.
type Institution struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ShortName string   `json:"short_name,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	PeerGroup bool     `json:"peer_group"`
}

// Label prefers the short name.
func (i Institution) Label() string {
	if i.ShortName != "" {
		return i.ShortName
	}
	if i.Name != "" {
		return i.Name
	}
	return i.ID
}
