package supervisornode

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
)

// Persist appends the finalized response to the thread and writes the
// assistant message plus all extracted jobs. Job writes fan out concurrently
// and are awaited before the turn returns; each failure is logged and
// isolated so the remaining writes and the response are unaffected.
func Persist(ctx context.Context, in *GraphState, gateway contractx.Gateway) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Conversation.Append(in.Response, in.Now)

	if !in.HasIdentity {
		if len(in.Jobs) > 0 {
			log.Warn().
				Int("jobs", len(in.Jobs)).
				Msg("no identity; extracted jobs not persisted")
		}
		return in, nil
	}

	if _, err := gateway.SaveMessage(ctx, in.UserID, in.ThreadID, contractx.RoleAssistant, in.Response.Content); err != nil {
		log.Warn().
			Err(err).
			Str("thread_id", in.ThreadID).
			Msg("assistant message save failed")
	}

	var wg sync.WaitGroup
	for _, job := range in.Jobs {
		wg.Add(1)
		go func(job contractx.JobRecord) {
			defer wg.Done()
			if _, err := gateway.SaveJob(ctx, in.UserID, job); err != nil {
				log.Warn().
					Err(err).
					Str("job_title", job.JobTitle).
					Str("company", job.Company).
					Msg("job save failed")
			}
		}(job)
	}
	wg.Wait()

	return in, nil
}
