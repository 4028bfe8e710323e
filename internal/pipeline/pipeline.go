// Package pipeline wires enforcement, grounding, fact checking and scoring into
// one run per request, with optional caching, metrics and logging.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/briefguard/internal/cache"
	"github.com/ppiankov/briefguard/internal/contract"
	"github.com/ppiankov/briefguard/internal/grounding"
	"github.com/ppiankov/briefguard/internal/logger"
	"github.com/ppiankov/briefguard/internal/metrics"
	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/normalize"
	"github.com/ppiankov/briefguard/internal/score"
	"github.com/ppiankov/briefguard/internal/validate"
)

// Stage names used for timing
const (
	stageEnforce   = "enforce"
	stageGround    = "ground"
	stageFactCheck = "fact_check"
	stageScore     = "score"
)

// Pipeline orchestrates the complete check process
type Pipeline struct {
	enforcer    *contract.Enforcer
	grounder    *grounding.Grounder
	scorer      *score.Scorer
	cache       cache.Cache
	metrics     *metrics.Metrics
	logger      *logger.Logger
	config      *model.Config
	fingerprint string
}

// Option configures optional pipeline collaborators
type Option func(*Pipeline)

// WithCache memoizes reports in c
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithMetrics records run metrics in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the structured logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	p := &Pipeline{
		enforcer:    contract.NewEnforcer(),
		grounder:    grounding.NewGrounder(&cfg.Grounding, validate.NewAuthorityClassifier(&cfg.Authority)),
		scorer:      score.NewScorer(),
		logger:      logger.NewNop(),
		config:      cfg,
		fingerprint: configFingerprint(cfg),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// configFingerprint hashes the settings that change report content, so a
// config edit never serves a stale cached report
func configFingerprint(cfg *model.Config) string {
	data, err := json.Marshal(struct {
		Grounding model.GroundingConfig
		Authority model.AuthorityConfig
	}{cfg.Grounding, cfg.Authority})
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Run enforces the raw output of req, grounds and fact checks the result and
// scores it. Contract failures are returned as a wrapped *contract.IssueError.
func (p *Pipeline) Run(ctx context.Context, req *model.Request) (*model.Report, error) {
	if req == nil {
		p.metrics.ObserveRun(metrics.OutcomeError)
		return nil, fmt.Errorf("run: nil request")
	}
	if err := ctx.Err(); err != nil {
		p.metrics.ObserveRun(metrics.OutcomeError)
		return nil, fmt.Errorf("run %s: %w", req.ID, err)
	}

	limits := req.Limits()
	log := p.logger.With("request", req.ID)

	key, cached := p.lookup(req, limits)
	if cached != nil {
		log.Debug("report served from cache", "run", cached.RunID)
		p.metrics.ObserveRun(metrics.OutcomeOK)
		return cached, nil
	}

	// 1. Enforce the output contract
	out, repairs, err := p.enforce(log, req.Raw, limits)
	if err != nil {
		return nil, fmt.Errorf("enforce %s: %w", req.ID, err)
	}

	// 2. Ground claims against the corpus
	start := time.Now()
	brief := grounding.FromStructuredOutput(out)
	result := p.grounder.Ground(brief, req.Corpus, selection(out), req.Indicators)
	p.metrics.ObserveStage(stageGround, start)

	// 3. Numeric fact check
	start = time.Now()
	facts := grounding.FactCheck(brief, req.Corpus, p.factCheckOptions()...)
	p.metrics.ObserveStage(stageFactCheck, start)

	// 4. Quality score (never affects enforcement)
	start = time.Now()
	scoreResult := p.scorer.Calculate(score.Input{
		Grounding: result,
		FactCheck: facts,
		Repairs:   repairs.Len(),
	})
	p.metrics.ObserveStage(stageScore, start)

	report := &model.Report{
		RunID:       uuid.NewString(),
		RequestID:   req.ID,
		GeneratedAt: time.Now().UTC(),
		Limits:      limits,
		Output:      out,
		Repairs:     repairs.Lines(),
		Grounding:   result,
		FactCheck:   facts,
		Score:       scoreResult,
	}

	p.observeReport(report)
	log.Info("request checked",
		"run", report.RunID,
		"claims", result.Stats.Total,
		"supported", result.Stats.Supported,
		"issues", len(result.Issues)+len(facts),
		"index", scoreResult.Index,
	)

	p.store(key, report)
	return report, nil
}

// Enforce runs contract enforcement alone and records its outcome
func (p *Pipeline) Enforce(raw string, limits model.Limits) (*model.StructuredOutput, *contract.Repairs, error) {
	out, repairs, err := p.enforce(p.logger, raw, limits)
	if err == nil {
		p.metrics.ObserveRun(metrics.OutcomeOK)
	}
	return out, repairs, err
}

func (p *Pipeline) enforce(log *logger.Logger, raw string, limits model.Limits) (*model.StructuredOutput, *contract.Repairs, error) {
	start := time.Now()
	out, repairs, err := p.enforcer.Enforce(raw, limits)
	p.metrics.ObserveStage(stageEnforce, start)
	if err != nil {
		var issueErr *contract.IssueError
		if errors.As(err, &issueErr) {
			log.Warn("output rejected", "issues", len(issueErr.Issues))
			p.metrics.ObserveRun(metrics.OutcomeIssues)
		} else {
			p.metrics.ObserveRun(metrics.OutcomeError)
		}
		return nil, repairs, err
	}
	if repairs.Len() > 0 {
		log.Debug("soft repairs applied", "count", repairs.Len())
	}
	p.metrics.ObserveRepairs(repairCounts(repairs))
	return out, repairs, nil
}

// Ground checks an already structured brief without contract enforcement
func (p *Pipeline) Ground(brief *model.Brief, corpus []model.CorpusEntry, selection []int, indicators []model.IndicatorRef) *model.Report {
	start := time.Now()
	result := p.grounder.Ground(brief, corpus, selection, indicators)
	p.metrics.ObserveStage(stageGround, start)

	start = time.Now()
	facts := grounding.FactCheck(brief, corpus, p.factCheckOptions()...)
	p.metrics.ObserveStage(stageFactCheck, start)

	report := &model.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Grounding:   result,
		FactCheck:   facts,
		Score:       p.scorer.Calculate(score.Input{Grounding: result, FactCheck: facts}),
	}
	p.observeReport(report)
	return report
}

// CheckFile loads a request file and runs it
func (p *Pipeline) CheckFile(ctx context.Context, path string) (*model.Report, error) {
	req, err := LoadRequest(path)
	if err != nil {
		p.metrics.ObserveRun(metrics.OutcomeError)
		return nil, err
	}
	return p.Run(ctx, req)
}

func (p *Pipeline) factCheckOptions() []grounding.FactCheckOption {
	return []grounding.FactCheckOption{grounding.WithStructuralFallback(p.config.Grounding.StructuralFallback)}
}

func (p *Pipeline) observeReport(report *model.Report) {
	stats := report.Grounding.Stats
	p.metrics.ObserveRun(metrics.OutcomeOK)
	p.metrics.ObserveClaims(stats.Supported, stats.Analysis, stats.NeedsVerification)
	p.metrics.ObserveIssues("grounding", len(report.Grounding.Issues))
	p.metrics.ObserveIssues("fact_check", len(report.FactCheck))
	p.metrics.ObserveQuality(report.Score.Index)
}

// lookup returns the cache key for req and a cached report when one exists
func (p *Pipeline) lookup(req *model.Request, limits model.Limits) (string, *model.Report) {
	if p.cache == nil {
		return "", nil
	}

	corpus, err := json.Marshal(struct {
		Corpus     []model.CorpusEntry
		Indicators []model.IndicatorRef
	}{req.Corpus, req.Indicators})
	if err != nil {
		return "", nil
	}
	key := cache.CacheKey(cache.Hash([]byte(req.Raw)), cache.Hash(corpus), limits, p.fingerprint)

	data, ok := p.cache.Get(key)
	p.metrics.ObserveCache(ok)
	if !ok {
		return key, nil
	}

	report := &model.Report{}
	if err := json.Unmarshal(data, report); err != nil {
		p.logger.Warn("discarding unreadable cache entry", "error", err)
		_ = p.cache.Delete(key)
		return key, nil
	}

	// A cached report is a new run of the same request
	report.RunID = uuid.NewString()
	report.RequestID = req.ID
	return key, report
}

func (p *Pipeline) store(key string, report *model.Report) {
	if p.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := p.cache.Set(key, data, p.config.Cache.TTL); err != nil {
		p.logger.Warn("cache write failed", "error", err)
	}
}

// selection lists the selected article indices in order
func selection(out *model.StructuredOutput) []int {
	indices := make([]int, 0, len(out.SelectedArticles))
	for _, a := range out.SelectedArticles {
		indices = append(indices, a.ArticleIndex)
	}
	return indices
}

func repairCounts(repairs *contract.Repairs) map[string]int {
	counts := make(map[string]int, len(normalize.RepairKinds))
	for _, kind := range normalize.RepairKinds {
		counts[string(kind)] = repairs.Count(kind)
	}
	return counts
}
