package zaken

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
)

// Field maps one upstream field code onto one output key.
type Field struct {
	Name  string
	From  string
	Parse ParseFunc
}

// WorkflowSource resolves the date a case's latest workflow reached a step.
type WorkflowSource interface {
	WorkflowDate(ctx context.Context, caseKey, stepTitle string) (*civil.Date, error)
}

// Deferred is the second-pass hook of a case type. Enrich runs concurrently
// for all held zaken and may only touch its own zaak. Place then runs
// sequentially in case-type order and decides how the zaak lands in the
// batch; a nil Place appends it.
type Deferred struct {
	Enrich func(ctx context.Context, z Zaak, wf WorkflowSource) error
	Place  func(z Zaak, b *Batch)
}

// CaseType is the declarative rule set for one upstream case type.
type CaseType struct {
	// Discriminator is the text45 value that selects this case type.
	Discriminator string
	Title         string
	Fields        []Field

	StatusTranslations   Translations
	DecisionTranslations Translations

	// Valid rejects source records before transformation when set.
	Valid func(r RawRecord) bool
	// AfterTransform normalises a single zaak after the field map ran.
	AfterTransform func(z Zaak, today civil.Date)
	Defer          *Deferred

	// PreviewOnly case types are not served in production.
	PreviewOnly bool
}

// Registry indexes the enabled case types by discriminator.
type Registry struct {
	byDiscriminator map[string]*CaseType
}

type registryOptions struct {
	production bool
}

type RegistryOption func(*registryOptions)

// WithProduction drops preview-only case types.
func WithProduction(production bool) RegistryOption {
	return func(o *registryOptions) {
		o.production = production
	}
}

// NewRegistry builds a registry from defs, skipping disabled case types. Two
// enabled case types sharing a discriminator is a configuration error.
func NewRegistry(defs []CaseType, opts ...RegistryOption) (*Registry, error) {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}
	r := &Registry{byDiscriminator: make(map[string]*CaseType, len(defs))}
	for i := range defs {
		def := defs[i]
		if def.Discriminator == "" {
			return nil, fmt.Errorf("case type %q has no discriminator", def.Title)
		}
		if def.PreviewOnly && o.production {
			continue
		}
		if _, dup := r.byDiscriminator[def.Discriminator]; dup {
			return nil, fmt.Errorf("duplicate case type discriminator %q", def.Discriminator)
		}
		r.byDiscriminator[def.Discriminator] = &def
	}
	return r, nil
}

// Lookup returns the case type for an exact discriminator.
func (r *Registry) Lookup(discriminator string) (*CaseType, bool) {
	ct, ok := r.byDiscriminator[discriminator]
	return ct, ok
}

// Discriminators lists the enabled case types, sorted.
func (r *Registry) Discriminators() []string {
	out := make([]string, 0, len(r.byDiscriminator))
	for d := range r.byDiscriminator {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
