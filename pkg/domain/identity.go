package domain

// Identity is the actor a session token belongs to.
type Identity struct {
	ID         string `json:"id"`
	EvmAddress string `json:"evmAddress,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Anonymous reports whether no actor could be resolved.
func (i Identity) Anonymous() bool {
	return i.ID == ""
}
