package supervisor

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
	nodex "github.com/jobscout-ai/jobscout/agent/nodes/supervisor"
)

func (s *Supervisor) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("receive",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.Receive(ctx, in, s.journal, s.gateway, s.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node receive: %w", err)
	}

	if err := graph.AddLambdaNode("load_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadContext(ctx, in, s.contexts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_context: %w", err)
	}

	if err := graph.AddLambdaNode("invoke",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Invoke(ctx, in, s.factory, s.maxContextTokens, s.invokeTimeout)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node invoke: %w", err)
	}

	if err := graph.AddLambdaNode("route",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Route(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route: %w", err)
	}

	if err := graph.AddLambdaNode("annotate",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Annotate(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node annotate: %w", err)
	}

	if err := graph.AddLambdaNode("persist",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Persist(ctx, in, s.gateway)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node persist: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Finalize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
			}
			if in.Annotate {
				return "annotate", nil
			}
			return "persist", nil
		},
		map[string]bool{
			"annotate": true,
			"persist":  true,
		},
	)

	edges := [][2]string{
		{compose.START, "receive"},
		{"receive", "load_context"},
		{"load_context", "invoke"},
		{"invoke", "route"},
		{"annotate", "persist"},
		{"persist", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	if err := graph.AddBranch("route", branch); err != nil {
		return nil, fmt.Errorf("add route branch: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("supervisor.handle_turn"))
	if err != nil {
		return nil, fmt.Errorf("compile supervisor graph: %w", err)
	}
	return runner, nil
}
