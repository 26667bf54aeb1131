package guardrails

import (
	"sort"

	"github.com/username/jomkira/backend/src/logger"
)

// Registry is an ordered collection of guardrail checks. It is constructed
// once at startup and passed into the interception middleware; there is no
// ambient global registry, so tests can build isolated instances.
type Registry struct {
	checks []Check
}

// NewRegistry creates a registry with the given checks. Checks may also be
// added later with Register.
func NewRegistry(checks ...Check) *Registry {
	r := &Registry{}
	for _, c := range checks {
		r.Register(c)
	}
	return r
}

// Register inserts a check and re-sorts by ascending priority. The sort is
// stable, so checks with equal priority keep their registration order.
func (r *Registry) Register(check Check) {
	r.checks = append(r.checks, check)
	sort.SliceStable(r.checks, func(i, j int) bool {
		return r.checks[i].Priority() < r.checks[j].Priority()
	})
	logger.L.Debug("Registered guardrail", "name", check.Name(), "priority", check.Priority())
}

// Checks returns the registered checks in execution order (for inspection).
func (r *Registry) Checks() []Check {
	return r.checks
}

// RunAll executes every check strictly in priority order and short-circuits
// on the first failure, returning that failure. If all pass, it returns an
// aggregate pass.
func (r *Registry) RunAll(ctx *Context) Result {
	for _, check := range r.checks {
		result := check.Check(ctx)
		if !result.Passed {
			logger.L.Warn("Guardrail blocked request",
				"check", check.Name(),
				"errorCode", result.ErrorCode)
			return result
		}
	}
	return Pass()
}
