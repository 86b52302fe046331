package utils

// contextKey keeps request-scoped values from colliding with keys set by
// other packages sharing the same context.
type contextKey struct {
	name string
}

func (c *contextKey) String() string {
	return c.name
}

// ClaimsKey holds the validated JWT claims of the authenticated caller.
var ClaimsKey = &contextKey{"claims"}

// TraceIdKey holds the per-request trace id injected at the top of the chain.
var TraceIdKey = &contextKey{"traceId"}

// SanitizedPayloadKey holds the bound, sanitized and validated request body.
var SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
