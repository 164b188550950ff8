package state

import (
	"strings"
	"testing"
	"time"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
)

func testNow() time.Time {
	return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
}

func msg(role contractx.Role, content string) contractx.Message {
	return contractx.Message{Role: role, Content: content}
}

func TestTrimKeepsEverythingUnderBudget(t *testing.T) {
	t.Parallel()

	messages := []contractx.Message{
		msg(contractx.RoleUser, "hello"),
		msg(contractx.RoleAssistant, "hi there"),
	}

	got := Trim(messages, 100)
	if len(got) != 2 {
		t.Fatalf("expected all messages kept, got %d", len(got))
	}
}

func TestTrimDropsOldestTurnsFirst(t *testing.T) {
	t.Parallel()

	// Three turns of ~10 tokens each (40 chars per turn).
	messages := []contractx.Message{
		msg(contractx.RoleUser, strings.Repeat("a", 20)),
		msg(contractx.RoleAssistant, strings.Repeat("b", 20)),
		msg(contractx.RoleUser, strings.Repeat("c", 20)),
		msg(contractx.RoleAssistant, strings.Repeat("d", 20)),
		msg(contractx.RoleUser, strings.Repeat("e", 20)),
		msg(contractx.RoleAssistant, strings.Repeat("f", 20)),
	}

	got := Trim(messages, 21)
	if len(got) != 4 {
		t.Fatalf("expected 4 messages (two newest turns), got %d", len(got))
	}
	if got[0].Role != contractx.RoleUser || got[0].Content[0] != 'c' {
		t.Fatalf("window must start on the user message of the second turn, got %+v", got[0])
	}
	if EstimateTokens(got) > 21 {
		t.Fatalf("trimmed estimate %d exceeds budget", EstimateTokens(got))
	}
}

func TestTrimNeverStartsMidTurn(t *testing.T) {
	t.Parallel()

	messages := []contractx.Message{
		msg(contractx.RoleUser, strings.Repeat("a", 40)),
		msg(contractx.RoleAssistant, strings.Repeat("b", 40)),
		msg(contractx.RoleTool, strings.Repeat("t", 40)),
		msg(contractx.RoleUser, strings.Repeat("c", 40)),
		msg(contractx.RoleAssistant, strings.Repeat("d", 40)),
	}

	got := Trim(messages, 25)
	if got[0].Role != contractx.RoleUser {
		t.Fatalf("trimmed window must start on a user message, got role=%s", got[0].Role)
	}
	for _, m := range got {
		if m.Role == contractx.RoleTool && got[0].Role != contractx.RoleUser {
			t.Fatal("tool result retained without its turn start")
		}
	}
}

func TestTrimOversizedFinalTurnKeptWhole(t *testing.T) {
	t.Parallel()

	messages := []contractx.Message{
		msg(contractx.RoleUser, strings.Repeat("a", 20)),
		msg(contractx.RoleAssistant, strings.Repeat("b", 20)),
		msg(contractx.RoleUser, strings.Repeat("x", 400)),
		msg(contractx.RoleTool, strings.Repeat("y", 400)),
		msg(contractx.RoleAssistant, strings.Repeat("z", 400)),
	}

	got := Trim(messages, 10)
	if len(got) != 3 {
		t.Fatalf("oversized final turn must be kept untruncated, got %d messages", len(got))
	}
	if got[0].Content[0] != 'x' {
		t.Fatalf("expected final turn only, got %+v", got[0])
	}
}

func TestTrimDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	messages := []contractx.Message{
		msg(contractx.RoleUser, strings.Repeat("a", 100)),
		msg(contractx.RoleAssistant, strings.Repeat("b", 100)),
		msg(contractx.RoleUser, strings.Repeat("c", 100)),
		msg(contractx.RoleAssistant, strings.Repeat("d", 100)),
	}

	_ = Trim(messages, 30)
	if len(messages) != 4 {
		t.Fatalf("input mutated: len=%d", len(messages))
	}
	if messages[0].Content[0] != 'a' {
		t.Fatal("input order changed")
	}
}

func TestJournalCreatesOncePerThread(t *testing.T) {
	t.Parallel()

	j := NewJournal()
	first, err := j.LoadOrCreate("u1", "t1")
	if err != nil {
		t.Fatalf("LoadOrCreate() error = %v", err)
	}
	second, err := j.LoadOrCreate("u1", "t1")
	if err != nil {
		t.Fatalf("LoadOrCreate() error = %v", err)
	}
	if first != second {
		t.Fatal("expected the same conversation for one thread")
	}

	if _, err := j.LoadOrCreate("u1", ""); err == nil {
		t.Fatal("expected error for empty thread id")
	}
}

func TestConversationLastUserID(t *testing.T) {
	t.Parallel()

	c := NewConversation("", "t1", testNow())
	c.Append(contractx.Message{
		Role:    contractx.RoleUser,
		Content: "hi",
		Meta:    map[string]string{contractx.MetaUserID: "u-42"},
	}, testNow())
	c.Append(contractx.Message{Role: contractx.RoleAssistant, Content: "hello"}, testNow())

	if got := c.LastUserID(); got != "u-42" {
		t.Fatalf("LastUserID() = %q, want u-42", got)
	}
}
