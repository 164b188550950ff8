package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	storagex "github.com/jobscout-ai/jobscout/agent/storage"
)

type fakeSearch struct {
	results    []SearchResult
	err        error
	queries    []string
	googleHits int
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func (f *fakeSearch) GoogleSearch(ctx context.Context, query string) ([]SearchResult, error) {
	f.googleHits++
	return f.results, f.err
}

type fakeLookup struct {
	jobs    []storagex.UserJob
	resumes []storagex.UserResume
	err     error
	userIDs []string
}

func (f *fakeLookup) JobsForUser(ctx context.Context, userID string, limit int) ([]storagex.UserJob, error) {
	f.userIDs = append(f.userIDs, userID)
	return f.jobs, f.err
}

func (f *fakeLookup) ResumesForUser(ctx context.Context, userID string) ([]storagex.UserResume, error) {
	f.userIDs = append(f.userIDs, userID)
	return f.resumes, f.err
}

func TestExecuteDisallowedToolReported(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeSearch{}, &fakeLookup{})
	results, err := g.Execute(context.Background(), contractx.CapabilityTailor, "u1", []contractx.ToolRequest{
		{Tool: ToolWebSearch, Args: map[string]any{"query": "acme"}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != 1 || results[0].Error == "" {
		t.Fatalf("expected a tool error for disallowed tool, got %+v", results)
	}
}

func TestExecuteSearchAndLookup(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{results: []SearchResult{{Title: "Acme", Link: "http://acme"}}}
	lookup := &fakeLookup{jobs: []storagex.UserJob{{JobTitle: "Dev", Company: "Acme"}}}
	g := NewGateway(search, lookup)

	results, err := g.Execute(context.Background(), contractx.CapabilityJobSearch, "u1", []contractx.ToolRequest{
		{Tool: ToolWebSearch, Args: map[string]any{"query": "golang jobs"}},
		{Tool: ToolJobsLookup, Args: map[string]any{"limit": float64(5)}},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Error != "" {
			t.Fatalf("unexpected tool error: %s", r.Error)
		}
	}
	if len(search.queries) != 1 || search.queries[0] != "golang jobs" {
		t.Fatalf("unexpected search queries: %v", search.queries)
	}
	if len(lookup.userIDs) != 1 || lookup.userIDs[0] != "u1" {
		t.Fatalf("lookup must receive the turn's user id, got %v", lookup.userIDs)
	}
}

func TestExecuteToolFailureIsolated(t *testing.T) {
	t.Parallel()

	search := &fakeSearch{err: errors.New("backend down")}
	g := NewGateway(search, &fakeLookup{})

	results, err := g.Execute(context.Background(), contractx.CapabilityResearch, "u1", []contractx.ToolRequest{
		{Tool: ToolWebSearch, Args: map[string]any{"query": "acme"}},
	})
	if err != nil {
		t.Fatalf("tool failure must not raise, got %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("expected error captured in the tool result")
	}
}

func TestExecuteLookupWithoutIdentity(t *testing.T) {
	t.Parallel()

	g := NewGateway(&fakeSearch{}, &fakeLookup{})
	results, err := g.Execute(context.Background(), contractx.CapabilityTailor, "", []contractx.ToolRequest{
		{Tool: ToolJobsLookup},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if results[0].Error == "" {
		t.Fatal("lookup without identity must be reported, not silently empty")
	}
}
