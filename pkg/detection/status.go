package detection

import (
	"fmt"

	"github.com/teslashibe/go-sensesafe/pkg/provider"
)

// ProviderStatus reports whether one provider is usable.
type ProviderStatus struct {
	Name       string `json:"name"`
	Enabled    bool   `json:"enabled"`
	Credential bool   `json:"credential"`
	Endpoint   bool   `json:"endpoint"`
}

// Status summarizes provider configuration.
type Status struct {
	Providers  []ProviderStatus `json:"providers"`
	Configured int              `json:"configured"`
	Total      int              `json:"total"`
	Summary    string           `json:"summary"`
}

// Status reports per-provider configuration, e.g. "2/4 models configured".
func (o *Orchestrator) Status() Status {
	st := Status{Providers: make([]ProviderStatus, 0, len(o.specs)), Total: len(o.specs)}
	for _, s := range o.specs {
		ps := ProviderStatus{
			Name:       s.Name,
			Enabled:    s.Enabled(),
			Credential: provider.HasCredential(s.Credential),
			Endpoint:   !provider.IsPlaceholder(s.Endpoint),
		}
		if ps.Enabled {
			st.Configured++
		}
		st.Providers = append(st.Providers, ps)
	}
	st.Summary = fmt.Sprintf("%d/%d models configured", st.Configured, st.Total)
	return st
}
