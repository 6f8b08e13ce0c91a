package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
	"github.com/zaynkorai/gemini-deepcrawl-research/metrics"
)

const GraphEnd = "__END__"

// ErrUnknownNode is returned when an edge or the entry point names a node
// that was never added.
var ErrUnknownNode = errors.New("unknown graph node")

// NodeFunc runs one step and returns a partial update for the state.
type NodeFunc[S, U any] func(ctx context.Context, state S) (U, error)

// RouterFunc picks the outgoing branch of a conditional edge.
type RouterFunc[S any] func(ctx context.Context, state S) (string, error)

// Reducer merges a node's update into the state and returns the new state.
type Reducer[S, U any] func(state S, update U) S

type edgeConfig[S any] struct {
	conditional bool
	toNode      string
	router      RouterFunc[S]
	routes      map[string]string
}

type Graph[S, U any] struct {
	nodes      map[string]NodeFunc[S, U]
	edges      map[string]edgeConfig[S]
	entryPoint string
	reduce     Reducer[S, U]
	logger     *zap.Logger
}

func NewGraph[S, U any](reduce Reducer[S, U], logger *zap.Logger) *Graph[S, U] {
	return &Graph[S, U]{
		nodes:  make(map[string]NodeFunc[S, U]),
		edges:  make(map[string]edgeConfig[S]),
		reduce: reduce,
		logger: logging.OrNop(logger),
	}
}

func (g *Graph[S, U]) AddNode(name string, node NodeFunc[S, U]) {
	g.nodes[name] = node
}

func (g *Graph[S, U]) SetEntryPoint(name string) {
	g.entryPoint = name
}

func (g *Graph[S, U]) SetFinishPoint(name string) {
	g.AddEdge(name, GraphEnd)
}

func (g *Graph[S, U]) AddEdge(fromNode, toNode string) {
	g.edges[fromNode] = edgeConfig[S]{toNode: toNode}
}

// AddConditionalEdges routes out of fromNode by the router's decision,
// looked up in routes.
func (g *Graph[S, U]) AddConditionalEdges(fromNode string, router RouterFunc[S], routes map[string]string) {
	g.edges[fromNode] = edgeConfig[S]{
		conditional: true,
		router:      router,
		routes:      routes,
	}
}

// Compile checks that the entry point and every edge target exist.
func (g *Graph[S, U]) Compile() (*Graph[S, U], error) {
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: entry point %q", ErrUnknownNode, g.entryPoint)
	}
	for from, edge := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("%w: edge source %q", ErrUnknownNode, from)
		}
		targets := []string{edge.toNode}
		if edge.conditional {
			targets = targets[:0]
			for _, to := range edge.routes {
				targets = append(targets, to)
			}
		}
		for _, to := range targets {
			if to == GraphEnd {
				continue
			}
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("%w: edge %q -> %q", ErrUnknownNode, from, to)
			}
		}
	}
	return g, nil
}

// Execute runs the graph from the entry point until it reaches GraphEnd,
// a node without outgoing edges, or maxIterations node executions. Hitting
// the cap is not an error; the state reached so far is returned.
func (g *Graph[S, U]) Execute(ctx context.Context, initialState S, maxIterations int) (S, error) {
	currentState := initialState
	currentNodeName := g.entryPoint

	if _, ok := g.nodes[currentNodeName]; !ok {
		return currentState, fmt.Errorf("%w: entry point %q", ErrUnknownNode, currentNodeName)
	}

	g.logger.Debug("starting workflow execution", zap.String("entry_point", currentNodeName))

	for i := 0; ; i++ {
		if currentNodeName == GraphEnd {
			g.logger.Debug("workflow reached end")
			return currentState, nil
		}
		if i >= maxIterations {
			g.logger.Warn("workflow reached max iterations without reaching end",
				zap.Int("max_iterations", maxIterations),
				zap.String("next_node", currentNodeName))
			return currentState, nil
		}
		if err := ctx.Err(); err != nil {
			return currentState, fmt.Errorf("workflow interrupted before node %q: %w", currentNodeName, err)
		}

		node, ok := g.nodes[currentNodeName]
		if !ok {
			return currentState, fmt.Errorf("%w: %q", ErrUnknownNode, currentNodeName)
		}

		log := g.logger.With(zap.String("node", currentNodeName))
		log.Debug("executing node")

		start := time.Now()
		update, err := node(ctx, currentState)
		metrics.NodeDuration.WithLabelValues(currentNodeName).Observe(time.Since(start).Seconds())
		if err != nil {
			return currentState, fmt.Errorf("error executing node %q: %w", currentNodeName, err)
		}
		currentState = g.reduce(currentState, update)

		log.Info("finished running node", zap.Duration("elapsed", time.Since(start)))

		edge, ok := g.edges[currentNodeName]
		if !ok {
			log.Debug("node has no outgoing edges, ending path")
			currentNodeName = GraphEnd
			continue
		}

		if !edge.conditional {
			currentNodeName = edge.toNode
			continue
		}

		decision, err := edge.router(ctx, currentState)
		if err != nil {
			return currentState, fmt.Errorf("error executing router for node %q: %w", currentNodeName, err)
		}
		next, ok := edge.routes[decision]
		if !ok {
			return currentState, fmt.Errorf("conditional edge from %q has no mapping for decision %q", currentNodeName, decision)
		}
		log.Debug("routed", zap.String("decision", decision), zap.String("next_node", next))
		currentNodeName = next
	}
}
