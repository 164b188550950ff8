package supervisornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
)

// LoadContext fetches the formatted user-context summary. Any failure or
// absence substitutes the sentinel; this step never fails the turn.
func LoadContext(ctx context.Context, in *GraphState, provider contractx.ContextProvider) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.UserContext = contractx.NoUserContext
	if in.UserID == "" || provider == nil {
		return in, nil
	}

	summary, err := provider.UserContext(ctx, in.UserID)
	if err != nil {
		log.Warn().
			Err(err).
			Msg("user context fetch failed; using sentinel")
		return in, nil
	}
	if s := strings.TrimSpace(summary); s != "" {
		in.UserContext = s
	}
	return in, nil
}
