package supervisornode

import (
	"fmt"

	"github.com/google/uuid"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	extractx "github.com/jobscout-ai/jobscout/agent/extract"
)

// Route decides, purely from the delegation result, whether the response
// gets a structured annotation. Typed records win; otherwise the newest
// job-search transcript entry is run through text extraction, then the
// reply text itself. Dropped or absent records simply mean no annotation.
func Route(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	jobs := extractx.FromTyped(in.Result.Jobs)
	if len(jobs) == 0 {
		for i := len(in.Result.Transcript) - 1; i >= 0; i-- {
			msg := in.Result.Transcript[i]
			if msg.Capability != contractx.CapabilityJobSearch {
				continue
			}
			jobs = extractx.FromText(msg.Content)
			break
		}
	}
	if len(jobs) == 0 {
		jobs = extractx.FromText(in.Result.Text)
	}

	in.Jobs = jobs
	in.Annotate = len(jobs) > 0
	in.Response = contractx.Message{
		ID:      uuid.NewString(),
		Role:    contractx.RoleAssistant,
		Content: in.Result.Text,
	}
	return in, nil
}
