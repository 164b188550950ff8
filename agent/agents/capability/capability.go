// Package capability builds the three task handlers (research, tailor,
// job search) and the delegation router that dispatches between them.
// Each handler plans tool calls with a tool-bound model, executes them
// through the tool gateway, then finalizes with a structured JSON pass.
package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	toolx "github.com/jobscout-ai/jobscout/agent/tool"
)

// maxToolRounds bounds the plan/execute loop inside a single capability
// invocation. Three rounds is enough for search-then-refine flows.
const maxToolRounds = 3

type llmCapability struct {
	name             contractx.CapabilityName
	structuredRunner compose.Runnable[map[string]any, capabilityLLMOutput]
	toolRunner       compose.Runnable[map[string]any, *schema.Message]
	tools            contractx.ToolGateway
	allowedTools     map[string]struct{}
}

type capabilityLLMOutput struct {
	Message string                `json:"message"`
	Jobs    []contractx.JobRecord `json:"jobs,omitempty"`
}

func newCapability(
	ctx context.Context,
	name contractx.CapabilityName,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools contractx.ToolGateway,
) (*llmCapability, error) {
	structuredRunner, err := compileCapabilityStructuredGraph(ctx, chatModel, systemPrompt, string(name))
	if err != nil {
		return nil, fmt.Errorf("%w: compile structured graph for capability=%s: %v", contractx.ErrCapabilityInvoke, name, err)
	}

	infos := toolx.InfosFor(name)
	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for capability=%s: %v", contractx.ErrCapabilityInvoke, name, err)
	}
	toolRunner, err := compileToolPlanningGraph(ctx, toolModel, systemPrompt, string(name))
	if err != nil {
		return nil, fmt.Errorf("%w: compile tool planning graph for capability=%s: %v", contractx.ErrCapabilityInvoke, name, err)
	}

	allowedTools := make(map[string]struct{}, len(infos))
	for _, t := range infos {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowedTools[t.Name] = struct{}{}
	}

	return &llmCapability{
		name:             name,
		structuredRunner: structuredRunner,
		toolRunner:       toolRunner,
		tools:            tools,
		allowedTools:     allowedTools,
	}, nil
}

var _ contractx.Capability = (*llmCapability)(nil)

func (c *llmCapability) Invoke(ctx context.Context, req contractx.CapabilityRequest) (contractx.CapabilityResult, error) {
	var toolResults []contractx.ToolResult

	for round := 0; round < maxToolRounds; round++ {
		toolRequests, err := c.planTools(ctx, req, toolResults)
		if err != nil {
			return contractx.CapabilityResult{}, err
		}
		if len(toolRequests) == 0 {
			break
		}

		results, err := c.tools.Execute(ctx, c.name, req.UserID, toolRequests)
		if err != nil {
			return contractx.CapabilityResult{}, fmt.Errorf("%w: execute tools for capability=%s: %v", contractx.ErrCapabilityInvoke, c.name, err)
		}
		toolResults = append(toolResults, results...)
	}

	return c.finalize(ctx, req, toolResults)
}

func (c *llmCapability) planTools(
	ctx context.Context,
	req contractx.CapabilityRequest,
	toolResults []contractx.ToolResult,
) ([]contractx.ToolRequest, error) {
	payload := map[string]any{
		"mode":         "plan",
		"request":      req.Request,
		"user_context": req.UserContext,
		"tool_results": toolResults,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal tool planning payload: %v", contractx.ErrValidation, err)
	}

	msg, err := c.toolRunner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: tool planning invoke for capability=%s: %v", contractx.ErrCapabilityInvoke, c.name, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty tool planning response", contractx.ErrSchemaViolation)
	}

	toolRequests, err := toToolRequests(msg.ToolCalls)
	if err != nil {
		return nil, err
	}

	for _, tr := range toolRequests {
		if _, ok := c.allowedTools[tr.Tool]; !ok {
			return nil, fmt.Errorf("%w: tool=%s is not allowed for capability=%s", contractx.ErrSchemaViolation, tr.Tool, c.name)
		}
	}
	return toolRequests, nil
}

func (c *llmCapability) finalize(
	ctx context.Context,
	req contractx.CapabilityRequest,
	toolResults []contractx.ToolResult,
) (contractx.CapabilityResult, error) {
	payload := map[string]any{
		"mode":         "finalize",
		"request":      req.Request,
		"user_context": req.UserContext,
		"tool_results": toolResults,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.CapabilityResult{}, fmt.Errorf("%w: marshal finalize payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.structuredRunner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return contractx.CapabilityResult{}, fmt.Errorf("%w: capability=%s invoke: %v", contractx.ErrCapabilityInvoke, c.name, err)
	}

	message := strings.TrimSpace(out.Message)
	if message == "" {
		return contractx.CapabilityResult{}, fmt.Errorf("%w: capability=%s returned an empty message", contractx.ErrSchemaViolation, c.name)
	}

	return contractx.CapabilityResult{
		Text: message,
		Jobs: out.Jobs,
	}, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			Tool: tool,
			Args: args,
		})
	}
	return reqs, nil
}
