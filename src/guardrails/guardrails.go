package guardrails

// Context carries everything a guardrail may inspect for a single request.
// It is ephemeral: built per request, never persisted.
type Context struct {
	// Body is the parsed request body, if it parsed at all.
	Body map[string]any
	// TextCandidates are the user-authored strings extracted from the body.
	TextCandidates []string
	// Metadata carries enrichment values such as the caller IP.
	Metadata map[string]any
}

// Result is the outcome of a single guardrail check.
type Result struct {
	Passed       bool
	ErrorMessage string
	ErrorCode    string
	Metadata     map[string]any
}

// Pass is the aggregate success result.
func Pass() Result {
	return Result{Passed: true}
}

// Check is a single content-inspection rule. Checks must be pure functions
// of their context so ordering and short-circuiting stay deterministic.
type Check interface {
	// Name returns the check's unique identifier.
	Name() string
	// Priority orders execution; lower runs earlier. Ties keep
	// registration order.
	Priority() int
	// Check inspects the context and reports pass/fail.
	Check(ctx *Context) Result
}
