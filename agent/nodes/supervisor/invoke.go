package supervisornode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	statex "github.com/jobscout-ai/jobscout/agent/state"
)

// FallbackReply is returned when delegation fails outright. The turn always
// answers; failures degrade the answer, never the protocol.
const FallbackReply = "Sorry, I ran into a problem completing that request. Please try again."

// Invoke trims history to the token budget and runs the delegation loop
// under the turn deadline. A blown step budget keeps the partial result; any
// other delegation error degrades to the fallback reply.
func Invoke(
	ctx context.Context,
	in *GraphState,
	factory DelegatorFactory,
	maxContextTokens int,
	timeout time.Duration,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	view := statex.Trim(in.Conversation.Messages, maxContextTokens)

	invokeCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		invokeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	delegator := factory.ForTurn(in.UserID)
	result, err := delegator.Invoke(invokeCtx, view, in.UserContext)
	switch {
	case err == nil:
	case errors.Is(err, contractx.ErrBudgetExceeded):
		log.Warn().
			Err(err).
			Str("thread_id", in.ThreadID).
			Msg("delegation step budget exhausted; answering with partial result")
	default:
		log.Error().
			Err(err).
			Str("thread_id", in.ThreadID).
			Msg("delegation failed")
		result = contractx.DelegationResult{}
	}

	if strings.TrimSpace(result.Text) == "" {
		result.Text = FallbackReply
	}
	in.Result = result
	return in, nil
}
