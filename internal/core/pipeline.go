package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel_concierge/src/logger"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
)

// Pipeline runs the turn stages in order as a compiled eino graph.
type Pipeline struct {
	nodes    []Node
	runnable compose.Runnable[*Turn, *Turn]
	log      zerolog.Logger
}

// NewPipeline compiles nodes into a linear graph. Once a stage marks the turn
// complete, only record stages still run.
func NewPipeline(ctx context.Context, nodes ...Node) (*Pipeline, error) {
	if len(nodes) == 0 {
		return nil, errors.New("pipeline needs at least one node")
	}

	p := &Pipeline{nodes: nodes, log: logger.Component("pipeline")}
	graph := compose.NewGraph[*Turn, *Turn]()
	previous := compose.START
	for _, node := range nodes {
		if node == nil {
			return nil, errors.New("node cannot be nil")
		}
		name := node.GetName()
		if name == "" {
			return nil, errors.New("node name cannot be empty")
		}
		if err := graph.AddLambdaNode(name, compose.InvokableLambda(p.stage(node))); err != nil {
			return nil, fmt.Errorf("failed to add node %s: %w", name, err)
		}
		if err := graph.AddEdge(previous, name); err != nil {
			return nil, fmt.Errorf("failed to add edge %s -> %s: %w", previous, name, err)
		}
		previous = name
	}
	if err := graph.AddEdge(previous, compose.END); err != nil {
		return nil, fmt.Errorf("failed to add end edge: %w", err)
	}

	runnable, err := graph.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error compiling turn pipeline: %w", err)
	}
	p.runnable = runnable
	return p, nil
}

func (p *Pipeline) stage(node Node) func(ctx context.Context, turn *Turn) (*Turn, error) {
	return func(ctx context.Context, turn *Turn) (*Turn, error) {
		if turn.Complete && node.GetType() != NodeTypeRecord {
			return turn, nil
		}
		turn.ExecutionPath = append(turn.ExecutionPath, node.GetName())
		if err := node.Execute(ctx, turn); err != nil {
			return nil, fmt.Errorf("error executing node %s: %w", node.GetName(), err)
		}
		return turn, nil
	}
}

// Nodes returns the stages in execution order.
func (p *Pipeline) Nodes() []Node {
	return p.nodes
}

// Execute runs one turn through every stage.
func (p *Pipeline) Execute(ctx context.Context, turn *Turn) (*Turn, error) {
	if turn == nil {
		return nil, errors.New("turn cannot be nil")
	}
	start := time.Now()
	out, err := p.runnable.Invoke(ctx, turn)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("conversation_id", out.ConversationID).
		Str("intent", string(out.Intent.Primary)).
		Strs("execution_path", out.ExecutionPath).
		Dur("elapsed", time.Since(start)).
		Msg("turn processed")
	return out, nil
}
