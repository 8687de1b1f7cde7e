package gate

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Decision describes one evaluated check. It is passed to the decision hook.
type Decision struct {
	Role        string
	Permission  Permission
	Allowed     bool
	Dynamic     bool
	HasInstance bool
	Err         error
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithLogger sets where configuration and predicate errors are reported.
func WithLogger(l logrus.FieldLogger) CheckerOption {
	return func(c *Checker) { c.logger = l }
}

// WithDecisionHook registers fn to observe every Check and Authorize call.
// fn runs synchronously and must not block.
func WithDecisionHook(fn func(Decision)) CheckerOption {
	return func(c *Checker) { c.hook = fn }
}

// Checker evaluates a PolicySet. It holds no mutable state of its own, so one
// Checker may serve concurrent checks. Nothing is cached between calls.
type Checker struct {
	set    *PolicySet
	logger logrus.FieldLogger
	hook   func(Decision)
}

// NewChecker creates a Checker over set.
func NewChecker(set *PolicySet, opts ...CheckerOption) *Checker {
	c := &Checker{set: set, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Role returns the role of the underlying PolicySet.
func (c *Checker) Role() string {
	if c == nil || c.set == nil {
		return ""
	}
	return c.set.Role()
}

// Evaluate decides the pair against instance, which may be nil.
// A missing rule yields a *ConfigError and a panicking predicate a
// *PredicateError; both come back with allowed == false.
func (c *Checker) Evaluate(rt ResourceType, action Action, instance any) (allowed bool, err error) {
	perm := NewPermission(rt, action)
	if c == nil {
		return false, &ConfigError{Permission: perm, Err: ErrMissingRule}
	}
	rule, ok := c.set.Rule(rt, action)
	if !ok {
		return false, &ConfigError{Role: c.set.Role(), Permission: perm, Err: ErrMissingRule}
	}
	defer func() {
		if rec := recover(); rec != nil {
			allowed = false
			err = &PredicateError{Permission: perm, Value: rec}
		}
	}()
	return rule.eval(instance), nil
}

// Check reports whether the action is allowed. Errors from Evaluate are
// logged and treated as deny.
func (c *Checker) Check(rt ResourceType, action Action, instance any) bool {
	allowed, err := c.Evaluate(rt, action, instance)
	c.report(rt, action, instance, allowed, err)
	return allowed
}

// Authorize is Check returning ErrDenied instead of false.
func (c *Checker) Authorize(rt ResourceType, action Action, instance any) error {
	if c.Check(rt, action, instance) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDenied, NewPermission(rt, action))
}

// Snapshot evaluates every pair of the set without an instance.
// Dynamic rules therefore report false unless they allow a nil instance.
func (c *Checker) Snapshot() map[Permission]bool {
	out := make(map[Permission]bool)
	if c == nil {
		return out
	}
	for _, perm := range c.set.Permissions() {
		rt, a := perm.Parse()
		allowed, err := c.Evaluate(rt, a, nil)
		if err != nil {
			c.logError(err, perm)
		}
		out[perm] = allowed
	}
	return out
}

func (c *Checker) report(rt ResourceType, action Action, instance any, allowed bool, err error) {
	perm := NewPermission(rt, action)
	if err != nil {
		c.logError(err, perm)
	}
	if c == nil || c.hook == nil {
		return
	}
	rule, _ := c.set.Rule(rt, action)
	c.hook(Decision{
		Role:        c.set.Role(),
		Permission:  perm,
		Allowed:     allowed,
		Dynamic:     rule.IsDynamic(),
		HasInstance: hasInstance(instance),
		Err:         err,
	})
}

func (c *Checker) logError(err error, perm Permission) {
	logger := logrus.StandardLogger().WithField("component", "gate")
	if c != nil && c.logger != nil {
		logger = c.logger.WithField("role", c.Role())
	}
	logger.WithError(err).WithField("permission", perm.String()).Error("permission check failed, denying")
}

// hasInstance reports whether instance carries a value. A typed nil pointer
// counts as absent, matching how Owned treats it.
func hasInstance(instance any) bool {
	if instance == nil {
		return false
	}
	v := reflect.ValueOf(instance)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return !v.IsNil()
	}
	return true
}
