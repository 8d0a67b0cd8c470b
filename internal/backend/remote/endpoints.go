package remote

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"projecthub/internal/core"
)

// Endpoints are the backend function URLs. Each one is a full URL; the
// action is appended as a query parameter.
type Endpoints struct {
	Stats       string
	Projects    string
	Estimates   string
	Contractors string
	Management  string
	Companies   string
}

// EndpointsFromBase derives every endpoint from a single base URL
// (base/stats, base/projects, ...).
func EndpointsFromBase(base string) Endpoints {
	base = strings.TrimRight(base, "/")
	return Endpoints{
		Stats:       base + "/stats",
		Projects:    base + "/projects",
		Estimates:   base + "/estimates",
		Contractors: base + "/contractors",
		Management:  base + "/management",
		Companies:   base + "/companies",
	}
}

// Validate checks that every endpoint is an absolute http(s) URL.
func (e Endpoints) Validate() error {
	var bad []string
	for name, raw := range map[string]string{
		"stats":       e.Stats,
		"projects":    e.Projects,
		"estimates":   e.Estimates,
		"contractors": e.Contractors,
		"management":  e.Management,
		"companies":   e.Companies,
	} {
		u, err := url.Parse(raw)
		if raw == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			bad = append(bad, name)
		}
	}
	sort.Strings(bad)
	if len(bad) > 0 {
		return fmt.Errorf("invalid endpoint URLs: %s", strings.Join(bad, ", "))
	}
	return nil
}

// ForAction returns the endpoint that serves a create action.
func (e Endpoints) ForAction(a core.Action) string {
	switch a {
	case core.ActionCreateCompany:
		return e.Companies
	case core.ActionCreateContractor:
		return e.Contractors
	default:
		return e.Management
	}
}

// withQuery appends query parameters to an endpoint URL, keeping any it
// already has.
func withQuery(endpoint string, params url.Values) (string, error) {
	if len(params) == 0 {
		return endpoint, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
