package guard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shamell/trustgate/internal/logger"
)

// Filter is a single request guard.
type Filter = func(http.Handler) http.Handler

// Pipeline is an explicit, ordered list of filters. The first filter is the
// outermost one: it sees the request first and the response last.
type Pipeline struct {
	filters chi.Middlewares
}

// NewPipeline builds a Pipeline from filters in order. Nil filters are
// skipped so optional guards can be passed unconditionally.
func NewPipeline(filters ...Filter) Pipeline {
	return Pipeline{}.Append(filters...)
}

// Append returns a new Pipeline with filters added after the existing ones.
// The receiver is not modified.
func (p Pipeline) Append(filters ...Filter) Pipeline {
	out := make(chi.Middlewares, 0, len(p.filters)+len(filters))
	out = append(out, p.filters...)
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return Pipeline{filters: out}
}

// Len returns the number of filters in the pipeline.
func (p Pipeline) Len() int {
	return len(p.filters)
}

// Middlewares exposes the filters for use with chi.Router.Use.
func (p Pipeline) Middlewares() chi.Middlewares {
	return p.filters
}

// Then wraps h with every filter of the pipeline.
func (p Pipeline) Then(h http.Handler) http.Handler {
	if len(p.filters) == 0 {
		return h
	}
	return p.filters.Handler(h)
}

// Option configures behaviour shared by all guards.
type Option func(*common)

type common struct {
	observer DenialObserver
	logger   *logger.Logger
}

func newCommon(opts []Option) common {
	c := common{}
	for _, opt := range opts {
		opt(&c)
	}
	c.observer = observerOrNop(c.observer)
	return c
}

// WithObserver reports every denial of the guard to o.
func WithObserver(o DenialObserver) Option {
	return func(c *common) {
		c.observer = o
	}
}

// WithLogger sets the base logger the correlation stamper derives
// request-scoped loggers from. Other guards log through the request-scoped
// logger and ignore it.
func WithLogger(l *logger.Logger) Option {
	return func(c *common) {
		c.logger = l
	}
}
