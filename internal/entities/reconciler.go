package entities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-extractor/internal/types"
)

// Tagger produces raw labeled spans for a text.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]RawSpan, error)
}

// Backend is a tagger together with its label vocabulary.
type Backend struct {
	Name               string
	Tagger             Tagger
	Labels             LabelMap
	ContinuationPrefix string
}

// FailureRecorder is notified when a backend fails.
type FailureRecorder interface {
	BackendFailed(backend string)
}

// Reconciler fans a text out to every backend and merges what comes back.
type Reconciler struct {
	backends []Backend
	timeout  time.Duration
	logger   zerolog.Logger
	failures FailureRecorder
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.timeout = d }
}

// WithLogger sets the logger used for backend failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// WithFailureRecorder registers a hook for backend failures.
func WithFailureRecorder(f FailureRecorder) Option {
	return func(r *Reconciler) { r.failures = f }
}

// NewReconciler creates a reconciler over backends. Order matters: earlier backends'
// entities come first in every group.
func NewReconciler(backends []Backend, opts ...Option) *Reconciler {
	r := &Reconciler{
		backends: backends,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Backends returns the configured backend names.
func (r *Reconciler) Backends() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name
	}
	return names
}

// Reconcile tags the whitespace-collapsed text with every backend concurrently.
// It never fails: a backend that errors contributes no entities.
func (r *Reconciler) Reconcile(ctx context.Context, text string) types.EntityMap {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || len(r.backends) == 0 {
		return types.EntityMap{}
	}

	results := make([][]types.EntitySpan, len(r.backends))
	var g errgroup.Group
	for i, backend := range r.backends {
		g.Go(func() error {
			spans, err := r.run(ctx, backend, text)
			if err != nil {
				r.logger.Warn().Err(err).Str("backend", backend.Name).Msg("entity backend failed")
				if r.failures != nil {
					r.failures.BackendFailed(backend.Name)
				}
				return nil
			}
			results[i] = Collapse(spans, backend.Labels, backend.ContinuationPrefix)
			return nil
		})
	}
	_ = g.Wait()

	return Merge(results...)
}

func (r *Reconciler) run(ctx context.Context, backend Backend, text string) (spans []RawSpan, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &BackendError{Backend: backend.Name, Message: fmt.Sprintf("panic: %v", p)}
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return backend.Tagger.Tag(ctx, text)
}
