package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	openrouterx "github.com/jobscout-ai/jobscout/pkg/openrouter"
)

// Config selects the chat model per role. The router and each capability
// can override the default model and temperature.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	RouterModel          string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	ResearchModel        string  `envconfig:"RESEARCH_MODEL" split_words:"true"`
	TailorModel          string  `envconfig:"TAILOR_MODEL" split_words:"true"`
	JobSearchModel       string  `envconfig:"JOB_SEARCH_MODEL" split_words:"true"`
	RouterTemperature    float32 `envconfig:"ROUTER_TEMPERATURE" split_words:"true" default:"-1"`
	ResearchTemperature  float32 `envconfig:"RESEARCH_TEMPERATURE" split_words:"true" default:"-1"`
	TailorTemperature    float32 `envconfig:"TAILOR_TEMPERATURE" split_words:"true" default:"-1"`
	JobSearchTemperature float32 `envconfig:"JOB_SEARCH_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// RoleRouter is the pseudo-capability name used for the delegation router's
// model selection.
const RoleRouter contractx.CapabilityName = "router"

func (c Config) OpenRouterFor(role contractx.CapabilityName) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case RoleRouter:
		if v := strings.TrimSpace(c.RouterModel); v != "" {
			modelName = v
		}
		if c.RouterTemperature >= 0 {
			temp = c.RouterTemperature
		}
	case contractx.CapabilityResearch:
		if v := strings.TrimSpace(c.ResearchModel); v != "" {
			modelName = v
		}
		if c.ResearchTemperature >= 0 {
			temp = c.ResearchTemperature
		}
	case contractx.CapabilityTailor:
		if v := strings.TrimSpace(c.TailorModel); v != "" {
			modelName = v
		}
		if c.TailorTemperature >= 0 {
			temp = c.TailorTemperature
		}
	case contractx.CapabilityJobSearch:
		if v := strings.TrimSpace(c.JobSearchModel); v != "" {
			modelName = v
		}
		if c.JobSearchTemperature >= 0 {
			temp = c.JobSearchTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
