package provider

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrProviderDisabled marks a vendor that is known but switched off (flag
// unset or secrets missing). It is deliberately distinct from the unknown
// vendor case, which silently falls back to the generic adapter.
var ErrProviderDisabled = errors.New("provider disabled")

// Registry holds every compiled-in adapter keyed by vendor identifier. It is
// built once at startup and read-only afterwards; the orchestrator receives
// it by reference, there is no package-level instance.
type Registry struct {
	providers map[string]Provider
	fallback  Provider
	logger    *zap.Logger
}

// NewRegistry registers the given adapters under their upper-cased names.
// fallback handles vendors nobody modeled; it must always be enabled.
func NewRegistry(fallback Provider, logger *zap.Logger, providers ...Provider) *Registry {
	r := &Registry{
		providers: make(map[string]Provider, len(providers)),
		fallback:  fallback,
		logger:    logger,
	}
	for _, p := range providers {
		r.providers[strings.ToUpper(p.Name())] = p
	}
	logger.Info("IoT provider registry initialized",
		zap.Int("providers", len(r.providers)),
		zap.Strings("enabled", r.ListEnabled()),
	)
	return r
}

// Resolve returns the adapter for the vendor identifier (case-insensitive).
// Unknown vendors degrade to the generic fallback; a known-but-disabled
// vendor is an explicit error so it can never be mistaken for unknown.
func (r *Registry) Resolve(vendor string) (Provider, error) {
	p, ok := r.providers[strings.ToUpper(vendor)]
	if !ok {
		r.logger.Warn("Unknown IoT provider, falling back to generic",
			zap.String("provider", vendor))
		return r.fallback, nil
	}
	if !p.Enabled() {
		return nil, fmt.Errorf("%s: %w", p.Name(), ErrProviderDisabled)
	}
	return p, nil
}

// ListEnabled returns the enabled vendor identifiers, sorted.
func (r *Registry) ListEnabled() []string {
	var enabled []string
	for name, p := range r.providers {
		if p.Enabled() {
			enabled = append(enabled, name)
		}
	}
	sort.Strings(enabled)
	return enabled
}

func (r *Registry) lookup(vendor string) Provider {
	if p, ok := r.providers[strings.ToUpper(vendor)]; ok {
		return p
	}
	return r.fallback
}

// Capability queries. They answer for the adapter that Resolve would return,
// including the generic fallback for unknown vendors.

func (r *Registry) SupportsStatus(vendor string) bool {
	_, ok := r.lookup(vendor).(StatusQuerier)
	return ok
}

func (r *Registry) SupportsClose(vendor string) bool {
	_, ok := r.lookup(vendor).(Closer)
	return ok
}

func (r *Registry) SupportsAccessCodes(vendor string) bool {
	_, ok := r.lookup(vendor).(AccessCodeIssuer)
	return ok
}
