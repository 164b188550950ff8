package supervisornode

import (
	"fmt"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
)

// Annotate attaches a jobs-table payload correlated to the response message.
// The payload supplements the message; the text itself is never altered.
func Annotate(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if len(in.Jobs) == 0 {
		return in, nil
	}

	payload := contractx.UIPayload{
		Type:      contractx.UIPayloadTypeJobsTable,
		Data:      contractx.UIPayloadData{Jobs: in.Jobs},
		MessageID: in.Response.ID,
	}
	in.Payload = &payload
	in.Conversation.AttachPayload(payload, in.Now)
	return in, nil
}
