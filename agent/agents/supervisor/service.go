// Package supervisor sequences one conversation turn: receive, load user
// context, delegate, route, annotate, persist, reply.
package supervisor

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	nodex "github.com/jobscout-ai/jobscout/agent/nodes/supervisor"
	statex "github.com/jobscout-ai/jobscout/agent/state"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
)

const (
	defaultMaxContextTokens = 8000
	defaultInvokeTimeout    = 2 * time.Minute
)

type Config struct {
	// MaxContextTokens bounds the trimmed history view passed to delegation.
	MaxContextTokens int
	// InvokeTimeout is the only cancellation bound a turn carries.
	InvokeTimeout time.Duration
}

type Supervisor struct {
	journal  *statex.Journal
	factory  nodex.DelegatorFactory
	gateway  contractx.Gateway
	contexts contractx.ContextProvider

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	maxContextTokens int
	invokeTimeout    time.Duration

	now func() time.Time
}

func New(
	journal *statex.Journal,
	factory nodex.DelegatorFactory,
	gateway contractx.Gateway,
	contexts contractx.ContextProvider,
	cfg Config,
) (*Supervisor, error) {
	if journal == nil {
		return nil, errors.New("conversation journal is required")
	}
	if factory == nil {
		return nil, errors.New("delegator factory is required")
	}
	if gateway == nil {
		return nil, errors.New("persistence gateway is required")
	}

	maxContextTokens := cfg.MaxContextTokens
	if maxContextTokens <= 0 {
		maxContextTokens = defaultMaxContextTokens
	}
	invokeTimeout := cfg.InvokeTimeout
	if invokeTimeout <= 0 {
		invokeTimeout = defaultInvokeTimeout
	}

	s := &Supervisor{
		journal:          journal,
		factory:          factory,
		gateway:          gateway,
		contexts:         contexts,
		maxContextTokens: maxContextTokens,
		invokeTimeout:    invokeTimeout,
		now:              time.Now,
	}

	graphRunner, err := s.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleTurn runs one full turn and returns the finalized assistant message
// plus zero or one UI payload.
func (s *Supervisor) HandleTurn(ctx context.Context, req contractx.TurnRequest) (contractx.TurnResponse, error) {
	out, err := s.graphRunner.Invoke(ctx, req)
	if err != nil {
		return contractx.TurnResponse{}, err
	}
	return out, nil
}
