package gate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Template builds the Rules for one role from its parameters. Dynamic rules
// must capture what they need from params when the template runs.
type Template[P any] func(params P) Rules

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	fallback string
	logger   logrus.FieldLogger
}

// WithFallback makes Resolve use the named template for unrecognized roles
// instead of failing. The fallback must itself be a registered role.
func WithFallback(role string) ResolverOption {
	return func(o *resolverOptions) { o.fallback = role }
}

// WithResolverLogger sets the logger used to report fallbacks.
func WithResolverLogger(l logrus.FieldLogger) ResolverOption {
	return func(o *resolverOptions) { o.logger = l }
}

// Resolver maps a role name and its parameters to a PolicySet.
// P is the role parameter type shared by every template.
type Resolver[P any] struct {
	registry  *Registry
	templates map[string]Template[P]
	opts      resolverOptions
}

// NewResolver creates a resolver over registry. templates is copied.
func NewResolver[P any](registry *Registry, templates map[string]Template[P], opts ...ResolverOption) (*Resolver[P], error) {
	if registry == nil {
		return nil, errors.New("gate: resolver needs a registry")
	}
	if len(templates) == 0 {
		return nil, errors.New("gate: resolver needs at least one template")
	}
	res := &Resolver[P]{
		registry:  registry,
		templates: make(map[string]Template[P], len(templates)),
		opts:      resolverOptions{logger: logrus.StandardLogger()},
	}
	for name, tpl := range templates {
		if name == "" || tpl == nil {
			return nil, fmt.Errorf("gate: invalid template %q", name)
		}
		res.templates[name] = tpl
	}
	for _, opt := range opts {
		opt(&res.opts)
	}
	if fb := res.opts.fallback; fb != "" {
		if _, ok := res.templates[fb]; !ok {
			return nil, &ConfigError{Role: fb, Err: fmt.Errorf("fallback %w", ErrUnknownRole)}
		}
	}
	return res, nil
}

// Roles returns the registered role names, sorted.
func (r *Resolver[P]) Roles() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether role names a registered template.
func (r *Resolver[P]) Has(role string) bool {
	_, ok := r.templates[role]
	return ok
}

// Resolve instantiates the template for role with params.
// An unrecognized role resolves to the fallback template when one is
// configured, and fails with a *ConfigError wrapping ErrUnknownRole otherwise.
func (r *Resolver[P]) Resolve(role string, params P) (*PolicySet, error) {
	tpl, ok := r.templates[role]
	if !ok {
		cfgErr := &ConfigError{Role: role, Err: ErrUnknownRole}
		if r.opts.fallback == "" {
			return nil, cfgErr
		}
		r.opts.logger.WithError(cfgErr).
			WithField("fallback_role", r.opts.fallback).
			Warn("unrecognized role, using fallback template")
		role = r.opts.fallback
		tpl = r.templates[role]
	}
	return r.registry.Build(role, tpl(params))
}

// Validate instantiates every template with sample and checks it against the
// registry. Call it at startup so a missing rule fails the boot, not a request.
func (r *Resolver[P]) Validate(sample P) error {
	var errs []error
	for _, role := range r.Roles() {
		if err := r.registry.Validate(role, r.templates[role](sample)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
