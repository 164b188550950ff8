// Package tool declares the tools each capability may call and executes
// tool requests against the search and storage backends.
package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	storagex "github.com/jobscout-ai/jobscout/agent/storage"
)

const (
	ToolWebSearch     = "web.search"
	ToolGoogleSearch  = "google.search"
	ToolJobsLookup    = "jobs.lookup"
	ToolResumesLookup = "resumes.lookup"
)

// Searcher is the outbound search surface the executor needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
	GoogleSearch(ctx context.Context, query string) ([]SearchResult, error)
}

// LookupStore reads previously persisted jobs and resumes for a user.
type LookupStore interface {
	JobsForUser(ctx context.Context, userID string, limit int) ([]storagex.UserJob, error)
	ResumesForUser(ctx context.Context, userID string) ([]storagex.UserResume, error)
}

// InfosFor returns the tool declarations a capability is allowed to bind.
func InfosFor(capability contractx.CapabilityName) []*schema.ToolInfo {
	switch capability {
	case contractx.CapabilityResearch:
		return []*schema.ToolInfo{
			webSearchInfo(),
			{
				Name: ToolGoogleSearch,
				Desc: "Run a Google boolean search query and return the top 10 results.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"query": {Type: schema.String, Desc: "Boolean search query", Required: true},
				}),
			},
		}
	case contractx.CapabilityTailor:
		return []*schema.ToolInfo{
			{
				Name: ToolJobsLookup,
				Desc: "Retrieve the user's previously saved jobs.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"limit": {Type: schema.Integer, Desc: "Maximum number of jobs to return"},
				}),
			},
			{
				Name: ToolResumesLookup,
				Desc: "Retrieve the user's stored resumes.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
			},
		}
	case contractx.CapabilityJobSearch:
		return []*schema.ToolInfo{
			webSearchInfo(),
			{
				Name: ToolJobsLookup,
				Desc: "Retrieve the user's previously saved jobs.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"limit": {Type: schema.Integer, Desc: "Maximum number of jobs to return"},
				}),
			},
		}
	default:
		return nil
	}
}

func webSearchInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: ToolWebSearch,
		Desc: "Search the web for key summary information.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String, Desc: "Natural language query", Required: true},
		}),
	}
}

// Gateway executes tool requests on behalf of a capability. Tool failures
// are reported inside the ToolResult, not raised, so one failing tool never
// aborts a capability run.
type Gateway struct {
	search Searcher
	store  LookupStore
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func NewGateway(search Searcher, store LookupStore) *Gateway {
	return &Gateway{search: search, store: store}
}

func (g *Gateway) Execute(ctx context.Context, capability contractx.CapabilityName, userID string, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	allowed := make(map[string]struct{})
	for _, info := range InfosFor(capability) {
		allowed[info.Name] = struct{}{}
	}

	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if _, ok := allowed[req.Tool]; !ok {
			results = append(results, contractx.ToolResult{
				Tool:  req.Tool,
				Error: fmt.Sprintf("tool=%s is not available for capability=%s", req.Tool, capability),
			})
			continue
		}
		results = append(results, g.executeOne(ctx, req, userID))
	}
	return results, nil
}

func (g *Gateway) executeOne(ctx context.Context, req contractx.ToolRequest, userID string) contractx.ToolResult {
	switch req.Tool {
	case ToolWebSearch:
		query, ok := stringArg(req.Args, "query")
		if !ok {
			return contractx.ToolResult{Tool: req.Tool, Error: "query is required"}
		}
		results, err := g.search.Search(ctx, query)
		if err != nil {
			return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
		}
		return contractx.ToolResult{Tool: req.Tool, Result: results}

	case ToolGoogleSearch:
		query, ok := stringArg(req.Args, "query")
		if !ok {
			return contractx.ToolResult{Tool: req.Tool, Error: "query is required"}
		}
		results, err := g.search.GoogleSearch(ctx, query)
		if err != nil {
			return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
		}
		return contractx.ToolResult{Tool: req.Tool, Result: results}

	case ToolJobsLookup:
		if userID == "" {
			return contractx.ToolResult{Tool: req.Tool, Error: "no user identity for lookup"}
		}
		limit := intArg(req.Args, "limit", 20)
		jobs, err := g.store.JobsForUser(ctx, userID, limit)
		if err != nil {
			return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
		}
		return contractx.ToolResult{Tool: req.Tool, Result: jobs}

	case ToolResumesLookup:
		if userID == "" {
			return contractx.ToolResult{Tool: req.Tool, Error: "no user identity for lookup"}
		}
		resumes, err := g.store.ResumesForUser(ctx, userID)
		if err != nil {
			return contractx.ToolResult{Tool: req.Tool, Error: err.Error()}
		}
		return contractx.ToolResult{Tool: req.Tool, Result: resumes}

	default:
		return contractx.ToolResult{Tool: req.Tool, Error: "unknown tool"}
	}
}

func stringArg(args map[string]any, key string) (string, bool) {
	raw, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func intArg(args map[string]any, key string, fallback int) int {
	raw, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := raw.(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
