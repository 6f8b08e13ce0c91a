package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zaynkorai/gemini-deepcrawl-research/enhancement"
	"github.com/zaynkorai/gemini-deepcrawl-research/llm"
	"github.com/zaynkorai/gemini-deepcrawl-research/logging"
)

const (
	llmMaxRetries = 2

	// maxParallelSearches bounds concurrent grounded search calls per loop.
	maxParallelSearches = 4
)

var shortURLPattern = regexp.MustCompile(regexp.QuoteMeta(shortURLPrefix) + `\d+-\d+`)

// Nodes holds the dependencies shared by every node of one research run.
type Nodes struct {
	config   *Configuration
	gen      llm.Generator
	enhancer *enhancement.DecisionMaker
	logger   *zap.Logger
	chatOpts []llm.ChatOption
	now      func() time.Time
}

type NodesOption func(*Nodes)

func WithLogger(logger *zap.Logger) NodesOption {
	return func(n *Nodes) { n.logger = logging.OrNop(logger) }
}

// WithChatOptions forwards options to every chat model the nodes build.
func WithChatOptions(opts ...llm.ChatOption) NodesOption {
	return func(n *Nodes) { n.chatOpts = append(n.chatOpts, opts...) }
}

// WithClock overrides the source of the current date used in prompts.
func WithClock(now func() time.Time) NodesOption {
	return func(n *Nodes) { n.now = now }
}

// NewNodes builds the node set. enhancer may be nil, in which case content
// enhancement is never attempted.
func NewNodes(config *Configuration, gen llm.Generator, enhancer *enhancement.DecisionMaker, opts ...NodesOption) *Nodes {
	if config == nil {
		config = NewConfiguration()
	}
	n := &Nodes{
		config:   config,
		gen:      gen,
		enhancer: enhancer,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Nodes) chat(model string, temperature float64) *llm.ChatModel {
	return llm.NewChatModel(n.gen, model, temperature, llmMaxRetries, n.chatOpts...)
}

func (n *Nodes) currentDate() string {
	return formatDate(n.now())
}

func (n *Nodes) reasoningModel(state OverallState, fallback string) string {
	if state.ReasoningModel != "" {
		return state.ReasoningModel
	}
	return fallback
}

// researchTopic is the current plan task, else the user query, else the
// conversation so far.
func researchTopic(state OverallState) string {
	if len(state.Plan) > 0 && state.CurrentTaskPointer >= 0 && state.CurrentTaskPointer < len(state.Plan) {
		return state.Plan[state.CurrentTaskPointer].Description
	}
	if state.UserQuery != "" {
		return state.UserQuery
	}
	return GetResearchTopic(state.Messages)
}

// GenerateQuery asks the query model for the initial search queries.
func (n *Nodes) GenerateQuery(ctx context.Context, state OverallState) (StateUpdate, error) {
	count := state.InitialSearchQueryCount
	if count <= 0 {
		count = n.config.NumberOfInitialQueries
	}
	if count < 1 {
		count = 1
	}
	topic := researchTopic(state)

	prompt := fmt.Sprintf(QueryWriterInstructions, count, n.currentDate(), topic)
	result, err := n.chat(n.config.QueryGeneratorModel, 1.0).WithStructuredOutput().Invoke(ctx, prompt)
	if err != nil {
		return StateUpdate{}, fmt.Errorf("failed to generate query: %w", err)
	}

	var sqList SearchQueryList
	if err := decodeJSON(result.Content, &sqList); err != nil {
		return StateUpdate{}, fmt.Errorf("failed to unmarshal SearchQueryList: %w", err)
	}

	queries := make([]Query, 0, len(sqList.Query))
	for _, q := range sqList.Query {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, Query{Query: q, Rationale: sqList.Rationale})
		}
	}
	if len(queries) == 0 {
		queries = append(queries, Query{Query: topic})
	}
	if len(queries) > count {
		queries = queries[:count]
	}

	n.logger.Info("generated search queries", zap.String("node", "generate_query"), zap.Int("count", len(queries)))

	return StateUpdate{
		SearchQueries:           Set(queries),
		InitialSearchQueryCount: Set(count),
	}, nil
}

type searchResult struct {
	text    string
	sources []Source
}

// WebResearch runs one grounded search per pending query, in parallel, and
// appends the cited summaries and their sources in query order.
func (n *Nodes) WebResearch(ctx context.Context, state OverallState) (StateUpdate, error) {
	queries := state.SearchQueries
	if len(queries) == 0 {
		n.logger.Warn("no search queries to run", zap.String("node", "web_research"))
		return StateUpdate{}, nil
	}

	results := make([]searchResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelSearches)
	for i, q := range queries {
		id := state.NumberOfRanQueries + i
		g.Go(func() error {
			r, err := n.search(gctx, q.Query, id)
			if err != nil {
				return fmt.Errorf("error during web search for query %q: %w", q.Query, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StateUpdate{}, err
	}

	texts := slices.Clone(state.WebResearchResults)
	sources := slices.Clone(state.SourcesGathered)
	for _, r := range results {
		texts = append(texts, r.text)
		sources = append(sources, r.sources...)
	}

	n.logger.Info("web research done",
		zap.String("node", "web_research"),
		zap.Int("queries", len(queries)),
		zap.Int("sources", len(sources)))

	return StateUpdate{
		WebResearchResults: Set(texts),
		SourcesGathered:    Set(sources),
		NumberOfRanQueries: Set(state.NumberOfRanQueries + len(queries)),
	}, nil
}

func (n *Nodes) search(ctx context.Context, query string, id int) (searchResult, error) {
	prompt := fmt.Sprintf(WebSearcherInstructions, query, n.currentDate())
	resp, err := n.chat(n.config.QueryGeneratorModel, 0).WithGoogleSearch().Invoke(ctx, prompt)
	if err != nil {
		return searchResult{}, err
	}
	if resp.Grounding == nil {
		return searchResult{text: resp.Content}, nil
	}

	resolved := ResolveURLs(resp.Grounding.GroundingChunks, id)
	citations := GetCitations(resp.Grounding, resolved)

	var sources []Source
	for _, c := range citations {
		for _, seg := range c.Segments {
			sources = append(sources, Source{
				Title:    seg.Label,
				URL:      seg.Value,
				Snippet:  c.Text,
				ShortURL: seg.ShortURL,
				LinkID:   fmt.Sprintf("%d", id),
			})
		}
	}
	return searchResult{
		text:    InsertCitationMarkers(resp.Content, citations),
		sources: sources,
	}, nil
}

// Reflection is the base sufficiency check: it asks the reasoning model
// whether the summaries answer the topic and what to search next.
func (n *Nodes) Reflection(ctx context.Context, state OverallState) (ReflectionState, error) {
	model := n.reasoningModel(state, n.config.ReflectionModel)
	prompt := fmt.Sprintf(ReflectionInstructions,
		researchTopic(state), n.currentDate(), strings.Join(state.WebResearchResults, "\n\n---\n\n"))

	result, err := n.chat(model, 1.0).WithStructuredOutput().Invoke(ctx, prompt)
	if err != nil {
		return ReflectionState{}, fmt.Errorf("failed to perform reflection: %w", err)
	}

	var reflection Reflection
	if err := decodeJSON(result.Content, &reflection); err != nil {
		return ReflectionState{}, fmt.Errorf("failed to unmarshal Reflection: %w", err)
	}

	return ReflectionState{
		IsSufficient:       reflection.IsSufficient,
		KnowledgeGap:       reflection.KnowledgeGap,
		FollowUpQueries:    reflection.FollowUpQueries,
		ResearchLoopCount:  state.ResearchLoopCount + 1,
		NumberOfRanQueries: state.NumberOfRanQueries,
	}, nil
}

// ReflectionNode runs the enhancement-aware reflection and turns its
// follow-up queries into the next round of searches.
func (n *Nodes) ReflectionNode(ctx context.Context, state OverallState) (StateUpdate, error) {
	r, err := EnhancedReflection(ctx, state, n.Reflection, n.logger)
	if err != nil {
		return StateUpdate{}, err
	}

	next := make([]Query, 0, len(r.FollowUpQueries))
	for _, q := range r.FollowUpQueries {
		next = append(next, Query{Query: q, Rationale: r.KnowledgeGap})
	}

	n.logger.Info("reflection done",
		zap.String("node", "reflection"),
		zap.Bool("is_sufficient", r.IsSufficient),
		zap.Int("research_loop_count", r.ResearchLoopCount),
		zap.Int("follow_up_queries", len(next)))

	return StateUpdate{
		IsSufficient:       Set(r.IsSufficient),
		KnowledgeGap:       Set(r.KnowledgeGap),
		FollowUpQueries:    Set(r.FollowUpQueries),
		ResearchLoopCount:  Set(r.ResearchLoopCount),
		NumberOfRanQueries: Set(r.NumberOfRanQueries),
		SearchQueries:      Set(next),
	}, nil
}

// EvaluateResearch routes to finalize_answer once research is sufficient or
// the loop budget is spent, and back to web_research otherwise.
func (n *Nodes) EvaluateResearch(ctx context.Context, state OverallState) (string, error) {
	maxLoops := n.config.MaxResearchLoops
	if state.MaxResearchLoops > 0 {
		maxLoops = state.MaxResearchLoops
	}
	if state.IsSufficient || state.ResearchLoopCount >= maxLoops || len(state.SearchQueries) == 0 {
		return "finalize_answer", nil
	}
	return "web_research", nil
}

// FinalizeAnswer writes the answer, swaps short URLs for the original ones
// and keeps only the sources the answer cites.
func (n *Nodes) FinalizeAnswer(ctx context.Context, state OverallState) (StateUpdate, error) {
	model := n.reasoningModel(state, n.config.AnswerModel)
	prompt := fmt.Sprintf(AnswerInstructions,
		researchTopic(state), n.currentDate(), strings.Join(state.WebResearchResults, "\n---\n\n"))

	result, err := n.chat(model, 0).Invoke(ctx, prompt)
	if err != nil {
		return StateUpdate{}, fmt.Errorf("failed to finalize answer: %w", err)
	}

	byShort := make(map[string]Source, len(state.SourcesGathered))
	for _, source := range state.SourcesGathered {
		if source.ShortURL != "" {
			byShort[source.ShortURL] = source
		}
	}
	used := make(map[string]bool)
	answer := shortURLPattern.ReplaceAllStringFunc(result.Content, func(short string) string {
		source, ok := byShort[short]
		if !ok {
			return short
		}
		used[short] = true
		return source.URL
	})

	seen := make(map[string]bool)
	var cited []Source
	for _, source := range state.SourcesGathered {
		if !used[source.ShortURL] || seen[source.URL] {
			continue
		}
		seen[source.URL] = true
		cited = append(cited, source)
	}

	messages := append(slices.Clone(state.Messages), AIMessage{Content: answer})

	return StateUpdate{
		Messages:        Set(messages),
		SourcesGathered: Set(cited),
	}, nil
}

// decodeJSON accepts a bare JSON object or one wrapped in a markdown fence.
func decodeJSON(content string, v any) error {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return json.Unmarshal([]byte(s), v)
}
