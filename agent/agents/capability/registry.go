package capability

import (
	"context"
	"fmt"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	llmx "github.com/jobscout-ai/jobscout/agent/llm"
	promptx "github.com/jobscout-ai/jobscout/agent/prompt"
)

type registryImpl struct {
	research  contractx.Capability
	tailor    contractx.Capability
	jobSearch contractx.Capability
}

func (r *registryImpl) Research() contractx.Capability {
	return r.research
}

func (r *registryImpl) Tailor() contractx.Capability {
	return r.tailor
}

func (r *registryImpl) JobSearch() contractx.Capability {
	return r.jobSearch
}

func (r *registryImpl) Lookup(name contractx.CapabilityName) (contractx.Capability, bool) {
	switch name {
	case contractx.CapabilityResearch:
		return r.research, true
	case contractx.CapabilityTailor:
		return r.tailor, true
	case contractx.CapabilityJobSearch:
		return r.jobSearch, true
	default:
		return nil, false
	}
}

// NewRegistry compiles one capability per supported task. Compilation binds
// models and tool declarations once per process; the capabilities themselves
// hold no per-turn state.
func NewRegistry(ctx context.Context, cfg llmx.Config, tools contractx.ToolGateway) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tools == nil {
		return nil, fmt.Errorf("%w: tool gateway is required", contractx.ErrValidation)
	}

	prompts := promptx.LoadPromptSet()

	researchModelCfg := cfg.OpenRouterFor(contractx.CapabilityResearch)
	researchModel, err := researchModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create research model: %v", contractx.ErrCapabilityInvoke, err)
	}
	tailorModelCfg := cfg.OpenRouterFor(contractx.CapabilityTailor)
	tailorModel, err := tailorModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create tailor model: %v", contractx.ErrCapabilityInvoke, err)
	}
	jobSearchModelCfg := cfg.OpenRouterFor(contractx.CapabilityJobSearch)
	jobSearchModel, err := jobSearchModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create job search model: %v", contractx.ErrCapabilityInvoke, err)
	}

	research, err := newCapability(ctx, contractx.CapabilityResearch, researchModel, prompts.Research, tools)
	if err != nil {
		return nil, err
	}
	tailor, err := newCapability(ctx, contractx.CapabilityTailor, tailorModel, prompts.Tailor, tools)
	if err != nil {
		return nil, err
	}
	jobSearch, err := newCapability(ctx, contractx.CapabilityJobSearch, jobSearchModel, prompts.JobSearch, tools)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		research:  research,
		tailor:    tailor,
		jobSearch: jobSearch,
	}, nil
}
