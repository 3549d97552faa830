package notifications

import "context"

// FilterFunc reports whether notifications of the given severity should be
// published.
type FilterFunc func(Severity) bool

// Filter wraps a service and drops notifications whose severity the filter
// rejects.
func Filter(inner Service, allow FilterFunc) Service {
	if inner == nil || allow == nil {
		return Noop()
	}
	return &filteredService{inner: inner, allow: allow}
}

type filteredService struct {
	inner Service
	allow FilterFunc
}

func (f *filteredService) Success(ctx context.Context, title, message string, opts ...Option) error {
	if !f.allow(SeveritySuccess) {
		return nil
	}
	return f.inner.Success(ctx, title, message, opts...)
}

func (f *filteredService) Error(ctx context.Context, title, message string, opts ...Option) error {
	if !f.allow(SeverityError) {
		return nil
	}
	return f.inner.Error(ctx, title, message, opts...)
}

func (f *filteredService) Warning(ctx context.Context, title, message string, opts ...Option) error {
	if !f.allow(SeverityWarning) {
		return nil
	}
	return f.inner.Warning(ctx, title, message, opts...)
}

func (f *filteredService) Info(ctx context.Context, title, message string, opts ...Option) error {
	if !f.allow(SeverityInfo) {
		return nil
	}
	return f.inner.Info(ctx, title, message, opts...)
}
