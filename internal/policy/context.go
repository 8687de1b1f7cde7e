package policy

import (
	"context"

	"github.com/diewo77/go-adopt/gate"
)

type ctxKey string

const (
	checkerKey  ctxKey = "checker"
	subjectKey  ctxKey = "subject"
	instanceKey ctxKey = "instance"
)

// WithChecker stores the request's checker and subject.
func WithChecker(ctx context.Context, s *Subject, c *gate.Checker) context.Context {
	ctx = context.WithValue(ctx, subjectKey, s)
	return context.WithValue(ctx, checkerKey, c)
}

// CheckerFromContext returns the checker attached to the request, if any.
func CheckerFromContext(ctx context.Context) (*gate.Checker, bool) {
	c, ok := ctx.Value(checkerKey).(*gate.Checker)
	return c, ok && c != nil
}

// SubjectFromContext returns the subject attached to the request, if any.
func SubjectFromContext(ctx context.Context) (*Subject, bool) {
	s, ok := ctx.Value(subjectKey).(*Subject)
	return s, ok && s != nil
}

func withInstance(ctx context.Context, record any) context.Context {
	return context.WithValue(ctx, instanceKey, record)
}

// Instance returns the record loaded by RequireInstance.
func Instance[T any](ctx context.Context) (*T, bool) {
	v, ok := ctx.Value(instanceKey).(*T)
	return v, ok && v != nil
}
