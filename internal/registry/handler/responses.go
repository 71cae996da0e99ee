package handler

// DomainResponse answers owner-to-domain resolution queries.
type DomainResponse struct {
	Owner  string `json:"owner"`
	Domain string `json:"domain"`
}

// RegisteredResponse answers domain availability queries. Owner is set only
// for active domains.
type RegisteredResponse struct {
	Domain     string `json:"domain"`
	Registered bool   `json:"registered"`
	Owner      string `json:"owner,omitempty"`
}

// DomainsResponse carries the full ordered registration log.
type DomainsResponse struct {
	Domains []string `json:"domains"`
	Count   int      `json:"count"`
}

// StatusResponse acknowledges a committed mutation.
type StatusResponse struct {
	Status string `json:"status"`
}
