package contract

import "context"

// Capability is a self-contained task handler. Implementations must be pure
// functions of their inputs plus injected tool access: no instance state may
// be observable by a later, unrelated turn.
type Capability interface {
	Invoke(ctx context.Context, req CapabilityRequest) (CapabilityResult, error)
}

type Registry interface {
	Research() Capability
	Tailor() Capability
	JobSearch() Capability
	Lookup(name CapabilityName) (Capability, bool)
}

// Delegator is the delegation boundary the supervisor invokes once per turn.
// It owns the hard step budget; when the budget runs out it returns a
// best-effort partial result wrapped in ErrBudgetExceeded.
type Delegator interface {
	Invoke(ctx context.Context, history []Message, userContext string) (DelegationResult, error)
}

type ToolGateway interface {
	Execute(ctx context.Context, capability CapabilityName, userID string, reqs []ToolRequest) ([]ToolResult, error)
}

// ContextProvider resolves the formatted user-context summary for a user.
type ContextProvider interface {
	UserContext(ctx context.Context, userID string) (string, error)
}

// Gateway is the persistence boundary. Both calls may fail on transport
// errors; callers isolate each failure and never let it fail a turn.
type Gateway interface {
	SaveMessage(ctx context.Context, userID, threadID string, role Role, content string) (string, error)
	SaveJob(ctx context.Context, userID string, job JobRecord) (string, error)
}
