package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/research.txt
	researchRaw string

	//go:embed template/tailor.txt
	tailorRaw string

	//go:embed template/job_search.txt
	jobSearchRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Router    string
	Research  string
	Tailor    string
	JobSearch string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:    strings.TrimSpace(routerRaw),
		Research:  strings.TrimSpace(researchRaw),
		Tailor:    strings.TrimSpace(tailorRaw),
		JobSearch: strings.TrimSpace(jobSearchRaw),
	}
}
