package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	capabilityx "github.com/jobscout-ai/jobscout/agent/agents/capability"
	supervisorx "github.com/jobscout-ai/jobscout/agent/agents/supervisor"
	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	llmx "github.com/jobscout-ai/jobscout/agent/llm"
	statex "github.com/jobscout-ai/jobscout/agent/state"
	storagex "github.com/jobscout-ai/jobscout/agent/storage"
	toolx "github.com/jobscout-ai/jobscout/agent/tool"
	configx "github.com/jobscout-ai/jobscout/pkg/config"
	_ "github.com/jobscout-ai/jobscout/pkg/logger/autoload"
	openrouterx "github.com/jobscout-ai/jobscout/pkg/openrouter"
	ratelimitx "github.com/jobscout-ai/jobscout/pkg/ratelimit"
)

type AppConfig struct {
	UserID           string        `envconfig:"USER_ID" split_words:"true"`
	ThreadID         string        `envconfig:"THREAD_ID" split_words:"true"`
	MaxContextTokens int           `envconfig:"MAX_CONTEXT_TOKENS" split_words:"true" default:"8000"`
	MaxSteps         int           `envconfig:"MAX_STEPS" split_words:"true" default:"25"`
	InvokeTimeout    time.Duration `envconfig:"INVOKE_TIMEOUT" split_words:"true" default:"2m"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if openrouterx.NewClient(llmCfg.OpenRouterFor("")) == nil {
		log.Fatal().Msg("openrouter credentials are missing")
	}
	storageCfg := configx.MustNew[storagex.Config]("POSTGRES")
	searchCfg := configx.MustNew[toolx.SearchConfig]("SEARCH")
	limitCfg := configx.MustNew[ratelimitx.Config]("RATE_LIMIT")

	store, err := storagex.New(*storageCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	defer store.Close()

	limiter := ratelimitx.MustNew(*limitCfg)
	search, err := toolx.NewSearchClient(*searchCfg, limiter)
	if err != nil {
		log.Fatal().Err(err).Msg("init search client")
	}
	tools := toolx.NewGateway(search, store)

	registry, err := capabilityx.NewRegistry(ctx, *llmCfg, tools)
	if err != nil {
		log.Fatal().Err(err).Msg("init capability registry")
	}
	factory, err := capabilityx.NewFactory(ctx, *llmCfg, registry, appCfg.MaxSteps)
	if err != nil {
		log.Fatal().Err(err).Msg("init delegator factory")
	}

	svc, err := supervisorx.New(statex.NewJournal(), factory, store, store, supervisorx.Config{
		MaxContextTokens: appCfg.MaxContextTokens,
		InvokeTimeout:    appCfg.InvokeTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init supervisor")
	}

	runREPL(ctx, svc, appCfg.UserID, appCfg.ThreadID)
}

func runREPL(ctx context.Context, svc *supervisorx.Supervisor, userID, threadID string) {
	if threadID == "" {
		threadID = fmt.Sprintf("thread-%d", time.Now().Unix())
	}

	fmt.Println("jobscout ready. Type a message, or \"exit\" to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return
		}

		out, err := svc.HandleTurn(ctx, contractTurn(text, userID, threadID))
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			continue
		}

		fmt.Println(out.Message.Content)
		if out.Payload != nil {
			fmt.Printf("[%s] %d job(s) attached\n", out.Payload.Type, len(out.Payload.Data.Jobs))
			for _, job := range out.Payload.Data.Jobs {
				fmt.Printf("  - %s at %s (%s) rating=%d %s\n",
					job.JobTitle, job.Company, job.Location, job.MatchRating, job.Link)
			}
		}
	}
}

func contractTurn(text, userID, threadID string) contractx.TurnRequest {
	return contractx.TurnRequest{
		Message:  contractx.Message{Role: contractx.RoleUser, Content: text},
		UserID:   userID,
		ThreadID: threadID,
	}
}
