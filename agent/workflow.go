package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/zaynkorai/gemini-deepcrawl-research/enhancement"
	"github.com/zaynkorai/gemini-deepcrawl-research/llm"
	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
)

// Node names.
const (
	NodeGenerateQuery      = "generate_query"
	NodeWebResearch        = "web_research"
	NodeContentEnhancement = "content_enhancement_analysis"
	NodeReflection         = "reflection"
	NodeFinalizeAnswer     = "finalize_answer"
)

const (
	reasoningModelKey        = "reasoning_model"
	nodesPerResearchLoop     = 3
	nodesOutsideResearchLoop = 2
)

var ErrEmptyQuery = errors.New("empty research query")

// Workflow builds and runs the research graph. It is safe for concurrent
// use; every run gets its own configuration and node set.
type Workflow struct {
	gen      llm.Generator
	enhancer *enhancement.DecisionMaker
	logger   *zap.Logger
	nodeOpts []NodesOption
	model    string
}

func NewWorkflow(gen llm.Generator, enhancer *enhancement.DecisionMaker, logger *zap.Logger, opts ...NodesOption) *Workflow {
	logger = logging.OrNop(logger)
	return &Workflow{
		gen:      gen,
		enhancer: enhancer,
		logger:   logger,
		nodeOpts: append([]NodesOption{WithLogger(logger)}, opts...),
	}
}

// WithDefaultModel sets the model every run uses unless overridden, in
// place of GEMINI_MODEL.
func (w *Workflow) WithDefaultModel(model string) *Workflow {
	w.model = strings.TrimSpace(model)
	return w
}

// defaults is the configuration a run starts from before overrides.
func (w *Workflow) defaults() *Configuration {
	if w.model == "" {
		return NewConfiguration()
	}
	return newConfiguration(w.model)
}

// Build wires the nodes for config into a compiled graph.
func (w *Workflow) Build(config *Configuration) (*Graph[OverallState, StateUpdate], error) {
	nodes := NewNodes(config, w.gen, w.enhancer, w.nodeOpts...)

	builder := NewGraph[OverallState, StateUpdate](OverallState.Apply, w.logger)

	builder.AddNode(NodeGenerateQuery, nodes.GenerateQuery)
	builder.AddNode(NodeWebResearch, nodes.WebResearch)
	builder.AddNode(NodeContentEnhancement, nodes.ContentEnhancementAnalysis)
	builder.AddNode(NodeReflection, nodes.ReflectionNode)
	builder.AddNode(NodeFinalizeAnswer, nodes.FinalizeAnswer)

	builder.SetEntryPoint(NodeGenerateQuery)

	builder.AddEdge(NodeGenerateQuery, NodeWebResearch)
	builder.AddConditionalEdges(
		NodeWebResearch,
		nodes.ShouldEnhanceContent,
		map[string]string{
			RouteAnalyzeEnhancement:     NodeContentEnhancement,
			RouteContinueWithoutEnhance: NodeReflection,
		},
	)
	builder.AddEdge(NodeContentEnhancement, NodeReflection)
	builder.AddConditionalEdges(
		NodeReflection,
		nodes.EvaluateResearch,
		map[string]string{
			NodeWebResearch:    NodeWebResearch,
			NodeFinalizeAnswer: NodeFinalizeAnswer,
		},
	)
	builder.SetFinishPoint(NodeFinalizeAnswer)

	return builder.Compile()
}

// Run researches query and returns the final state. overrides may carry
// any Configuration option plus reasoning_model.
func (w *Workflow) Run(ctx context.Context, query string, overrides *RunnableConfig) (OverallState, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return OverallState{}, ErrEmptyQuery
	}

	config, err := resolve(w.defaults(), overrides)
	if err != nil {
		return OverallState{}, err
	}
	graph, err := w.Build(config)
	if err != nil {
		return OverallState{}, err
	}

	initial := OverallState{
		Messages:                []Message{HumanMessage{Content: query}},
		UserQuery:               query,
		InitialSearchQueryCount: config.NumberOfInitialQueries,
		MaxResearchLoops:        config.MaxResearchLoops,
	}
	if overrides != nil {
		initial.ReasoningModel = cast.ToString(overrides.Configurable[reasoningModelKey])
	}

	w.logger.Info("starting research run",
		zap.String("query", query),
		zap.Int("initial_queries", config.NumberOfInitialQueries),
		zap.Int("max_research_loops", config.MaxResearchLoops))

	return graph.Execute(ctx, initial, maxIterations(config.MaxResearchLoops))
}

// maxIterations is enough node executions for every allowed research loop.
func maxIterations(loops int) int {
	if loops < 1 {
		loops = 1
	}
	return nodesOutsideResearchLoop + loops*nodesPerResearchLoop
}
