package capability

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	toolx "github.com/jobscout-ai/jobscout/agent/tool"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type fakeToolGateway struct {
	calls   []fakeToolCall
	results []contractx.ToolResult
	err     error
}

type fakeToolCall struct {
	capability contractx.CapabilityName
	userID     string
	reqs       []contractx.ToolRequest
}

func (f *fakeToolGateway) Execute(ctx context.Context, capability contractx.CapabilityName, userID string, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	f.calls = append(f.calls, fakeToolCall{capability: capability, userID: userID, reqs: reqs})
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func toolCallMessage(name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{
				ID:   "call_1",
				Type: "function",
				Function: schema.FunctionCall{
					Name:      name,
					Arguments: args,
				},
			},
		},
	}
}

func TestCapabilityFinalizeWithoutTools(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Role: schema.Assistant, Content: "no tools needed"},
			{Role: schema.Assistant, Content: `{"message":"Here is what I found."}`},
		},
	}

	c, err := newCapability(context.Background(), contractx.CapabilityResearch, fake, "research prompt", &fakeToolGateway{})
	if err != nil {
		t.Fatalf("newCapability() error = %v", err)
	}

	out, err := c.Invoke(context.Background(), contractx.CapabilityRequest{
		Request:     "research remote Go roles",
		UserContext: contractx.NoUserContext,
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out.Text != "Here is what I found." {
		t.Fatalf("unexpected text: %q", out.Text)
	}
	if len(out.Jobs) != 0 {
		t.Fatalf("expected no jobs, got %#v", out.Jobs)
	}
}

func TestCapabilityToolRoundThenFinalize(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMessage(toolx.ToolWebSearch, `{"query":"golang jobs berlin"}`),
			{Role: schema.Assistant, Content: "done planning"},
			{Role: schema.Assistant, Content: `{"message":"Found two roles.","jobs":[{"job_title":"Go Engineer","company":"Acme","location":"Berlin","match_rating":4,"link":"https://acme.example/jobs/1"}]}`},
		},
	}
	gateway := &fakeToolGateway{
		results: []contractx.ToolResult{
			{Tool: toolx.ToolWebSearch, Result: "two listings"},
		},
	}

	c, err := newCapability(context.Background(), contractx.CapabilityJobSearch, fake, "job search prompt", gateway)
	if err != nil {
		t.Fatalf("newCapability() error = %v", err)
	}

	out, err := c.Invoke(context.Background(), contractx.CapabilityRequest{
		Request: "find golang jobs in berlin",
		UserID:  "user-1",
	})
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(gateway.calls) != 1 {
		t.Fatalf("expected 1 gateway call, got %d", len(gateway.calls))
	}
	call := gateway.calls[0]
	if call.capability != contractx.CapabilityJobSearch {
		t.Fatalf("unexpected capability: %s", call.capability)
	}
	if call.userID != "user-1" {
		t.Fatalf("unexpected user id: %s", call.userID)
	}
	if len(call.reqs) != 1 || call.reqs[0].Tool != toolx.ToolWebSearch {
		t.Fatalf("unexpected tool requests: %#v", call.reqs)
	}
	if call.reqs[0].Args["query"] != "golang jobs berlin" {
		t.Fatalf("unexpected args: %#v", call.reqs[0].Args)
	}

	if out.Text != "Found two roles." {
		t.Fatalf("unexpected text: %q", out.Text)
	}
	if len(out.Jobs) != 1 || out.Jobs[0].JobTitle != "Go Engineer" || out.Jobs[0].MatchRating != 4 {
		t.Fatalf("unexpected jobs: %#v", out.Jobs)
	}
}

func TestCapabilityDisallowedToolRejected(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			toolCallMessage(toolx.ToolResumesLookup, `{}`),
		},
	}

	c, err := newCapability(context.Background(), contractx.CapabilityResearch, fake, "research prompt", &fakeToolGateway{})
	if err != nil {
		t.Fatalf("newCapability() error = %v", err)
	}

	_, err = c.Invoke(context.Background(), contractx.CapabilityRequest{Request: "research"})
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestCapabilityEmptyMessageIsSchemaViolation(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{Role: schema.Assistant, Content: "no tools"},
			{Role: schema.Assistant, Content: `{"message":"   "}`},
		},
	}

	c, err := newCapability(context.Background(), contractx.CapabilityTailor, fake, "tailor prompt", &fakeToolGateway{})
	if err != nil {
		t.Fatalf("newCapability() error = %v", err)
	}

	_, err = c.Invoke(context.Background(), contractx.CapabilityRequest{Request: "tailor my resume"})
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}

type fakeCapability struct {
	results []contractx.CapabilityResult
	err     error
	reqs    []contractx.CapabilityRequest
	idx     int
}

func (f *fakeCapability) Invoke(ctx context.Context, req contractx.CapabilityRequest) (contractx.CapabilityResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return contractx.CapabilityResult{}, f.err
	}
	if f.idx >= len(f.results) {
		return contractx.CapabilityResult{}, errors.New("no fake result left")
	}
	res := f.results[f.idx]
	f.idx++
	return res, nil
}

type fakeRegistry struct {
	research  *fakeCapability
	tailor    *fakeCapability
	jobSearch *fakeCapability
}

func (r *fakeRegistry) Research() contractx.Capability  { return r.research }
func (r *fakeRegistry) Tailor() contractx.Capability    { return r.tailor }
func (r *fakeRegistry) JobSearch() contractx.Capability { return r.jobSearch }

func (r *fakeRegistry) Lookup(name contractx.CapabilityName) (contractx.Capability, bool) {
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

func newTestDelegator(t *testing.T, routerResponses []*schema.Message, registry contractx.Registry, maxSteps int) *delegatorImpl {
	t.Helper()

	router, err := compileRouterGraph(context.Background(), &fakeToolCallingModel{responses: routerResponses}, "router prompt")
	if err != nil {
		t.Fatalf("compileRouterGraph() error = %v", err)
	}
	return &delegatorImpl{
		router:   router,
		registry: registry,
		maxSteps: maxSteps,
		userID:   "user-1",
	}
}

func TestDelegatorFinalWithoutDelegation(t *testing.T) {
	t.Parallel()

	d := newTestDelegator(t, []*schema.Message{
		{Role: schema.Assistant, Content: `{"action":"final","reply":"Hello! How can I help with your job search?"}`},
	}, &fakeRegistry{}, 5)

	res, err := d.Invoke(context.Background(), []contractx.Message{
		{Role: contractx.RoleUser, Content: "hi"},
	}, contractx.NoUserContext)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Text != "Hello! How can I help with your job search?" {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if len(res.Transcript) != 0 {
		t.Fatalf("expected empty transcript, got %#v", res.Transcript)
	}
}

func TestDelegatorDelegateThenFinal(t *testing.T) {
	t.Parallel()

	jobSearch := &fakeCapability{
		results: []contractx.CapabilityResult{
			{
				Text: "Found one role.",
				Jobs: []contractx.JobRecord{
					{JobTitle: "Go Engineer", Company: "Acme", Location: "Berlin", MatchRating: 4, Link: "https://acme.example/jobs/1"},
				},
			},
		},
	}
	registry := &fakeRegistry{jobSearch: jobSearch}

	d := newTestDelegator(t, []*schema.Message{
		{Role: schema.Assistant, Content: `{"action":"delegate","capability":"job_search","request":"find golang jobs in berlin"}`},
		{Role: schema.Assistant, Content: `{"action":"final","reply":"I found one Go role in Berlin."}`},
	}, registry, 5)

	res, err := d.Invoke(context.Background(), []contractx.Message{
		{Role: contractx.RoleUser, Content: "find me golang jobs in berlin"},
	}, "Name: Dana.")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(jobSearch.reqs) != 1 {
		t.Fatalf("expected 1 capability call, got %d", len(jobSearch.reqs))
	}
	if jobSearch.reqs[0].Request != "find golang jobs in berlin" {
		t.Fatalf("unexpected request: %q", jobSearch.reqs[0].Request)
	}
	if jobSearch.reqs[0].UserContext != "Name: Dana." {
		t.Fatalf("unexpected user context: %q", jobSearch.reqs[0].UserContext)
	}
	if jobSearch.reqs[0].UserID != "user-1" {
		t.Fatalf("unexpected user id: %q", jobSearch.reqs[0].UserID)
	}

	if res.Text != "I found one Go role in Berlin." {
		t.Fatalf("unexpected text: %q", res.Text)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].JobTitle != "Go Engineer" {
		t.Fatalf("unexpected jobs: %#v", res.Jobs)
	}
	if len(res.Transcript) != 1 {
		t.Fatalf("expected 1 transcript message, got %d", len(res.Transcript))
	}
	tr := res.Transcript[0]
	if tr.Role != contractx.RoleTool || tr.Capability != contractx.CapabilityJobSearch {
		t.Fatalf("unexpected transcript message: %#v", tr)
	}
	if !strings.Contains(tr.Content, `"job_title":"Go Engineer"`) {
		t.Fatalf("transcript content missing jobs payload: %q", tr.Content)
	}
}

func TestDelegatorBudgetExceededKeepsPartialResult(t *testing.T) {
	t.Parallel()

	research := &fakeCapability{
		results: []contractx.CapabilityResult{
			{Text: "Company overview part one."},
			{Text: "Company overview part two."},
		},
	}
	registry := &fakeRegistry{research: research}

	d := newTestDelegator(t, []*schema.Message{
		{Role: schema.Assistant, Content: `{"action":"delegate","capability":"research","request":"research acme"}`},
		{Role: schema.Assistant, Content: `{"action":"delegate","capability":"research","request":"research acme funding"}`},
	}, registry, 2)

	res, err := d.Invoke(context.Background(), []contractx.Message{
		{Role: contractx.RoleUser, Content: "research acme for me"},
	}, contractx.NoUserContext)
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !errors.Is(err, contractx.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if res.Text != "Company overview part two." {
		t.Fatalf("expected best-effort text from last delegation, got %q", res.Text)
	}
	if len(res.Transcript) != 2 {
		t.Fatalf("expected 2 transcript messages, got %d", len(res.Transcript))
	}
}

func TestDelegatorUnknownCapability(t *testing.T) {
	t.Parallel()

	d := newTestDelegator(t, []*schema.Message{
		{Role: schema.Assistant, Content: `{"action":"delegate","capability":"negotiate","request":"negotiate my offer"}`},
	}, &fakeRegistry{}, 3)

	_, err := d.Invoke(context.Background(), []contractx.Message{
		{Role: contractx.RoleUser, Content: "negotiate for me"},
	}, contractx.NoUserContext)
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}
