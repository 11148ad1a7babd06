package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tagFilter(tag string, trace *[]string) Filter {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trace = append(*trace, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestPipeline_Order(t *testing.T) {
	var trace []string
	p := NewPipeline(tagFilter("a", &trace), nil, tagFilter("b", &trace))
	p = p.Append(tagFilter("c", &trace))

	h := p.Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace = append(trace, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "c", "handler"}, trace)
	assert.Equal(t, 3, p.Len())
	assert.Len(t, p.Middlewares(), 3)
}

func TestPipeline_AppendDoesNotMutate(t *testing.T) {
	var trace []string
	base := NewPipeline(tagFilter("a", &trace))
	extended := base.Append(tagFilter("b", &trace))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, extended.Len())
}

func TestPipeline_Empty(t *testing.T) {
	called := false
	h := NewPipeline().Then(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
}
