// Package supervisornode holds the per-step functions of the turn-handling
// state machine. Each node takes the turn's graph state, does one unit of
// work, and hands the state to the next node.
package supervisornode

import (
	"errors"
	"time"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	statex "github.com/jobscout-ai/jobscout/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
)

type GraphInput = contractx.TurnRequest

type GraphOutput = contractx.TurnResponse

// GraphState is the turn-local state threaded through the node chain. It is
// created by Receive and never shared across turns.
type GraphState struct {
	Text     string
	UserID   string
	ThreadID string
	Now      time.Time

	// HasIdentity is true when both user and thread ids resolved. Without
	// it persistence is skipped and the turn still completes.
	HasIdentity bool

	Conversation *statex.Conversation
	UserContext  string

	Result   contractx.DelegationResult
	Response contractx.Message
	Jobs     []contractx.JobRecord
	Annotate bool
	Payload  *contractx.UIPayload
}

// DelegatorFactory mints a turn-scoped delegator bound to the resolved user.
type DelegatorFactory interface {
	ForTurn(userID string) contractx.Delegator
}
