package supervisornode

import (
	"fmt"
	"strings"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
)

func Finalize(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.Response.Content) == "" {
		return GraphOutput{}, fmt.Errorf("%w: response message is empty", contractx.ErrValidation)
	}
	return GraphOutput{
		Message: in.Response,
		Payload: in.Payload,
	}, nil
}
