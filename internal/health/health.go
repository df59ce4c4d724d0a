// Package health serves the ops listener's liveness and readiness
// probes.
//
//   - /healthz: liveness; a process that can answer HTTP is alive.
//   - /readyz: readiness; 200 only while every registered [Checker]
//     passes. The pipeline is not ready when, for example, the
//     recognition session has terminally failed or the lexicon is
//     empty.
//
// Responses are JSON with a top-level "status" ("ok" or "fail") and a
// "checks" map naming each probe's result.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// checkTimeout bounds a single readiness probe. Derived from the request
// context, so an impatient kubelet still cuts the whole request short.
const checkTimeout = 5 * time.Second

// Checker is one named readiness probe. Check returns nil while the
// dependency can serve and an error describing the problem otherwise.
type Checker struct {
	// Name keys this probe in the JSON response ("session", "lexicon",
	// "postgres").
	Name string

	// Check probes the dependency. It must respect context cancellation.
	Check func(ctx context.Context) error
}

// result is the JSON response body for both endpoints.
type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler answers /healthz and /readyz. Safe for concurrent use; the
// checker list is fixed at construction.
type Handler struct {
	checkers []Checker
}

// New builds a [Handler] that evaluates the given checkers, in order, on
// each /readyz request.
func New(checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c}
}

// Healthz always returns 200.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz runs every checker and returns 200 only when all pass. Failed
// probes report as "fail: <reason>" under their name.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.checkers))
	allOK := true

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			checks[c.Name] = "fail: " + err.Error()
			allOK = false
		} else {
			checks[c.Name] = "ok"
		}
	}

	res := result{
		Status: "ok",
		Checks: checks,
	}
	status := http.StatusOK
	if !allOK {
		res.Status = "fail"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, res)
}

// Register adds the probe routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// StateChecker reports the recognition session's fitness. state returns
// the current connection state string and terminal reports whether the
// session has given up; transient states (connecting, reconnecting) are
// still ready because audio keeps buffering through them.
func StateChecker(name string, state func() string, terminal func() bool) Checker {
	return Checker{
		Name: name,
		Check: func(context.Context) error {
			if terminal() {
				return errors.New("session failed: " + state())
			}
			return nil
		},
	}
}

// LexiconChecker fails while the morpheme dictionary is empty: with no
// entries every reconstruction degrades to a pass-through, which is a
// deployment fault, not a quiet mode.
func LexiconChecker(size func() int) Checker {
	return Checker{
		Name: "lexicon",
		Check: func(context.Context) error {
			if size() == 0 {
				return errors.New("no entries loaded")
			}
			return nil
		},
	}
}

// PingChecker wraps a Ping-style probe, such as a postgres pool's. The
// context carries the per-check deadline.
func PingChecker(name string, ping func(ctx context.Context) error) Checker {
	return Checker{Name: name, Check: ping}
}

// writeJSON encodes v with the given status, falling back to a plain 500
// when encoding fails.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
