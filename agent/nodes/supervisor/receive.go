package supervisornode

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	statex "github.com/jobscout-ai/jobscout/agent/state"
)

// Receive validates the incoming turn, resolves identity, appends the user
// message to the thread, and attempts the user-message save before
// delegation starts. The save is best effort; a failure is logged and the
// turn proceeds.
func Receive(
	ctx context.Context,
	in GraphInput,
	journal *statex.Journal,
	gateway contractx.Gateway,
	nowFn func() time.Time,
) (*GraphState, error) {
	text := strings.TrimSpace(in.Message.Content)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = strings.TrimSpace(in.Message.Meta[contractx.MetaUserID])
	}
	threadID := strings.TrimSpace(in.ThreadID)
	if threadID == "" {
		threadID = strings.TrimSpace(in.Message.Meta[contractx.MetaThreadID])
	}

	now := nowFn().UTC()

	var conv *statex.Conversation
	if threadID != "" {
		loaded, err := journal.LoadOrCreate(userID, threadID)
		if err != nil {
			return nil, err
		}
		conv = loaded
	} else {
		// No thread to attach to; the turn runs on an ephemeral
		// conversation that is never journaled or persisted.
		conv = statex.NewConversation(userID, "", now)
	}

	// Trailing message metadata is the last-resort identity source.
	if userID == "" {
		userID = conv.LastUserID()
	}

	msg := in.Message
	msg.ID = uuid.NewString()
	msg.Role = contractx.RoleUser
	msg.Content = text
	conv.Append(msg, now)

	st := &GraphState{
		Text:         text,
		UserID:       userID,
		ThreadID:     threadID,
		Now:          now,
		HasIdentity:  userID != "" && threadID != "",
		Conversation: conv,
	}

	if !st.HasIdentity {
		log.Warn().
			Str("thread_id", threadID).
			Msg("turn has no resolvable identity; persistence skipped")
		return st, nil
	}

	if _, err := gateway.SaveMessage(ctx, userID, threadID, contractx.RoleUser, text); err != nil {
		log.Warn().
			Err(err).
			Str("thread_id", threadID).
			Msg("user message save failed")
	}
	return st, nil
}
