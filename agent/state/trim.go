package state

import contractx "github.com/jobscout-ai/jobscout/agent/contract"

// Token estimate: ~4 characters per token works for most models. The
// estimate only needs to be deterministic, not billing-accurate.
const charsPerTokenEstimate = 4

func EstimateTokens(messages []contractx.Message) int {
	total := 0
	for i := range messages {
		total += len(messages[i].Content)
	}
	return total / charsPerTokenEstimate
}

// Trim bounds history to maxTokens by dropping the oldest turns first. A
// turn starts at a user message and runs until the next user message, so
// the retained window always starts on a user message and never splits an
// assistant message from the tool results that follow it. If the single
// most recent turn alone exceeds the budget it is kept whole. The result
// is a view over the input slice; the input is never mutated.
func Trim(messages []contractx.Message, maxTokens int) []contractx.Message {
	if len(messages) == 0 || maxTokens <= 0 {
		return messages
	}
	if EstimateTokens(messages) <= maxTokens {
		return messages
	}

	starts := turnStarts(messages)
	if len(starts) == 0 {
		// No user message anywhere; nothing safe to cut at.
		return messages
	}

	// Walk turns newest-first, keeping whole turns while they fit.
	keepFrom := starts[len(starts)-1]
	budget := maxTokens - EstimateTokens(messages[keepFrom:])
	if budget < 0 {
		// The most recent turn alone is over budget: keep it untruncated.
		return messages[keepFrom:]
	}

	for i := len(starts) - 2; i >= 0; i-- {
		turnCost := EstimateTokens(messages[starts[i]:starts[i+1]])
		if turnCost > budget {
			break
		}
		budget -= turnCost
		keepFrom = starts[i]
	}

	return messages[keepFrom:]
}

// turnStarts returns the indices of messages that open a turn.
func turnStarts(messages []contractx.Message) []int {
	starts := make([]int, 0, len(messages)/2+1)
	for i := range messages {
		if messages[i].Role == contractx.RoleUser {
			starts = append(starts, i)
		}
	}
	return starts
}
