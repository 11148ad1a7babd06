package guard

import (
	"net/http"

	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
)

// WriteDetail writes status with a {"detail": detail} JSON body.
func WriteDetail(w http.ResponseWriter, status int, detail string) {
	_, _ = utils.WriteJSON(w, models.ErrorResponse{Detail: detail}, status)
}

// headerHookWriter runs hook exactly once, right before the response
// headers are committed. Guards use it to add headers without overwriting
// values the downstream handler has set.
type headerHookWriter struct {
	http.ResponseWriter

	hook  func(http.Header)
	fired bool
}

func newHeaderHookWriter(w http.ResponseWriter, hook func(http.Header)) *headerHookWriter {
	return &headerHookWriter{ResponseWriter: w, hook: hook}
}

func (w *headerHookWriter) fire() {
	if w.fired {
		return
	}
	w.fired = true
	w.hook(w.ResponseWriter.Header())
}

func (w *headerHookWriter) WriteHeader(statusCode int) {
	w.fire()
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *headerHookWriter) Write(b []byte) (int, error) {
	w.fire()
	return w.ResponseWriter.Write(b)
}

// Flush commits headers before flushing when the underlying writer
// supports streaming.
func (w *headerHookWriter) Flush() {
	w.fire()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *headerHookWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// withHeaderHook serves next through a headerHookWriter and fires the hook
// afterwards in case next returned without writing anything.
func withHeaderHook(w http.ResponseWriter, r *http.Request, next http.Handler, hook func(http.Header)) {
	hw := newHeaderHookWriter(w, hook)
	next.ServeHTTP(hw, r)
	hw.fire()
}

// setIfAbsent sets key to value unless the handler already set it.
func setIfAbsent(h http.Header, key, value string) {
	if _, ok := h[http.CanonicalHeaderKey(key)]; ok {
		return
	}
	h.Set(key, value)
}
