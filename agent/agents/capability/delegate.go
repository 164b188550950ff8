package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	llmx "github.com/jobscout-ai/jobscout/agent/llm"
	promptx "github.com/jobscout-ai/jobscout/agent/prompt"
)

// DefaultMaxSteps caps router iterations within one turn. Each step is one
// router decision; a delegate step also runs the chosen capability.
const DefaultMaxSteps = 25

type routerDecision struct {
	Action     string `json:"action"` // "delegate" or "final"
	Capability string `json:"capability,omitempty"`
	Request    string `json:"request,omitempty"`
	Reply      string `json:"reply,omitempty"`
}

const (
	routerActionDelegate = "delegate"
	routerActionFinal    = "final"
)

// Factory compiles the router graph once and mints a Delegator per turn.
// The turn-scoped part is only the user identity threaded to tool lookups.
type Factory struct {
	router   compose.Runnable[map[string]any, routerDecision]
	registry contractx.Registry
	maxSteps int
}

func NewFactory(
	ctx context.Context,
	cfg llmx.Config,
	registry contractx.Registry,
	maxSteps int,
) (*Factory, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: capability registry is required", contractx.ErrValidation)
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	routerModelCfg := cfg.OpenRouterFor(llmx.RoleRouter)
	routerModel, err := routerModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create router model: %v", contractx.ErrCapabilityInvoke, err)
	}
	router, err := compileRouterGraph(ctx, routerModel, promptx.LoadPromptSet().Router)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrCapabilityInvoke, err)
	}

	return &Factory{
		router:   router,
		registry: registry,
		maxSteps: maxSteps,
	}, nil
}

func (f *Factory) ForTurn(userID string) contractx.Delegator {
	return &delegatorImpl{
		router:   f.router,
		registry: f.registry,
		maxSteps: f.maxSteps,
		userID:   userID,
	}
}

type delegatorImpl struct {
	router   compose.Runnable[map[string]any, routerDecision]
	registry contractx.Registry
	maxSteps int
	userID   string
}

var _ contractx.Delegator = (*delegatorImpl)(nil)

// Invoke runs the router loop until it emits a final reply or the step
// budget runs out. On exhaustion it returns the partial result wrapped in
// ErrBudgetExceeded; the caller decides how to surface it.
func (d *delegatorImpl) Invoke(
	ctx context.Context,
	history []contractx.Message,
	userContext string,
) (contractx.DelegationResult, error) {
	var res contractx.DelegationResult

	working := make([]contractx.Message, len(history))
	copy(working, history)

	for step := 0; step < d.maxSteps; step++ {
		decision, err := d.decide(ctx, working, userContext)
		if err != nil {
			return res, err
		}

		switch decision.Action {
		case routerActionFinal:
			reply := strings.TrimSpace(decision.Reply)
			if reply == "" {
				return res, fmt.Errorf("%w: final action carries an empty reply", contractx.ErrSchemaViolation)
			}
			res.Text = reply
			return res, nil

		case routerActionDelegate:
			msg, jobs, err := d.delegate(ctx, decision, userContext)
			if err != nil {
				return res, err
			}
			working = append(working, msg)
			res.Transcript = append(res.Transcript, msg)
			res.Jobs = append(res.Jobs, jobs...)

		default:
			return res, fmt.Errorf("%w: unknown router action=%q", contractx.ErrSchemaViolation, decision.Action)
		}
	}

	// Best effort: surface the latest capability output so the turn can
	// still answer even though routing never converged.
	for i := len(res.Transcript) - 1; i >= 0; i-- {
		if text := strings.TrimSpace(res.Transcript[i].Content); text != "" {
			res.Text = text
			break
		}
	}
	return res, fmt.Errorf("%w: no final reply after %d steps", contractx.ErrBudgetExceeded, d.maxSteps)
}

func (d *delegatorImpl) decide(
	ctx context.Context,
	working []contractx.Message,
	userContext string,
) (routerDecision, error) {
	payload := map[string]any{
		"messages":     working,
		"user_context": userContext,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return routerDecision{}, fmt.Errorf("%w: marshal router payload: %v", contractx.ErrValidation, err)
	}

	decision, err := d.router.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return routerDecision{}, fmt.Errorf("%w: router invoke: %v", contractx.ErrCapabilityInvoke, err)
	}
	return decision, nil
}

func (d *delegatorImpl) delegate(
	ctx context.Context,
	decision routerDecision,
	userContext string,
) (contractx.Message, []contractx.JobRecord, error) {
	name := contractx.CapabilityName(strings.TrimSpace(decision.Capability))
	handler, ok := d.registry.Lookup(name)
	if !ok {
		return contractx.Message{}, nil, fmt.Errorf("%w: unknown capability=%q", contractx.ErrSchemaViolation, decision.Capability)
	}

	request := strings.TrimSpace(decision.Request)
	if request == "" {
		return contractx.Message{}, nil, fmt.Errorf("%w: delegate action carries an empty request", contractx.ErrSchemaViolation)
	}

	out, err := handler.Invoke(ctx, contractx.CapabilityRequest{
		Request:     request,
		UserContext: userContext,
		UserID:      d.userID,
	})
	if err != nil {
		return contractx.Message{}, nil, err
	}

	content := out.Text
	if name == contractx.CapabilityJobSearch && len(out.Jobs) > 0 {
		if raw, err := json.Marshal(out.Jobs); err == nil {
			content = content + "\n\n" + string(raw)
		}
	}

	msg := contractx.Message{
		Role:       contractx.RoleTool,
		Content:    content,
		Capability: name,
	}
	return msg, out.Jobs, nil
}
