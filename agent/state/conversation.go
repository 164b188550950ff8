// Package state holds per-thread conversation state and the context-window
// trimming view the supervisor passes to delegation.
package state

import (
	"errors"
	"sync"
	"time"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
)

var (
	ErrInvalidThread = errors.New("thread id is empty")
)

// Conversation is the state for one (user_id, thread_id) thread: an ordered,
// append-only message sequence and a parallel sequence of UI payloads.
// It is mutated only by append and is never deleted here; durable lifecycle
// belongs to the persistence boundary.
type Conversation struct {
	UserID   string                `json:"user_id"`
	ThreadID string                `json:"thread_id"`
	Messages []contractx.Message   `json:"messages"`
	Payloads []contractx.UIPayload `json:"payloads,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewConversation(userID, threadID string, now time.Time) *Conversation {
	return &Conversation{
		UserID:    userID,
		ThreadID:  threadID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (c *Conversation) Append(msg contractx.Message, now time.Time) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = now.UTC()
}

func (c *Conversation) AttachPayload(p contractx.UIPayload, now time.Time) {
	c.Payloads = append(c.Payloads, p)
	c.UpdatedAt = now.UTC()
}

// LastUserID scans messages newest-first for an embedded user identity.
// Used as the fallback when a turn arrives without explicit metadata.
func (c *Conversation) LastUserID() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if id := c.Messages[i].Meta[contractx.MetaUserID]; id != "" {
			return id
		}
	}
	return ""
}

// Journal keeps live conversations by thread for the lifetime of the
// process. Threads are keyed by id alone; the owning user is recorded on
// the conversation when it is first created.
type Journal struct {
	mu      sync.Mutex
	threads map[string]*Conversation
	now     func() time.Time
}

func NewJournal() *Journal {
	return &Journal{
		threads: make(map[string]*Conversation, 16),
		now:     time.Now,
	}
}

// LoadOrCreate returns the conversation for threadID, creating it on the
// first turn of the thread.
func (j *Journal) LoadOrCreate(userID, threadID string) (*Conversation, error) {
	if threadID == "" {
		return nil, ErrInvalidThread
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if conv, ok := j.threads[threadID]; ok {
		return conv, nil
	}
	conv := NewConversation(userID, threadID, j.now())
	j.threads[threadID] = conv
	return conv, nil
}
