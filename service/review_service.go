package service

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/crev/domain"
	"github.com/ludo-technologies/crev/internal/ai"
	"github.com/ludo-technologies/crev/internal/metrics"
	"github.com/ludo-technologies/crev/internal/scanner"
	"github.com/ludo-technologies/crev/internal/version"
	"go.uber.org/zap"
)

// ReviewEngine implements domain.ReviewService. It owns one run's
// ReviewResult and retains no state between runs.
type ReviewEngine struct {
	registry   *ProviderRegistry
	scanner    *scanner.Scanner
	analyzer   *ai.Analyzer
	completion domain.CompletionClient
	fileReader domain.SourceFileReader
	progress   domain.ProgressManager
	events     domain.ReviewEvents
	executor   *ParallelExecutorImpl
	logger     *zap.Logger
}

// NewReviewEngine wires the engine from its collaborators. The completion
// client may be nil; Review then fails fast with COMPLETION_UNAVAILABLE.
func NewReviewEngine(registry *ProviderRegistry, completion domain.CompletionClient, fileReader domain.SourceFileReader, logger *zap.Logger) *ReviewEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewEngine{
		registry:   registry,
		scanner:    scanner.NewScanner(),
		analyzer:   ai.NewAnalyzer(completion, logger),
		completion: completion,
		fileReader: fileReader,
		progress:   &NoOpProgressManager{},
		executor:   NewParallelExecutor(),
		logger:     logger,
	}
}

// SetProgressManager installs a progress manager for interactive runs
func (e *ReviewEngine) SetProgressManager(pm domain.ProgressManager) {
	if pm != nil {
		e.progress = pm
	}
}

// SetEvents installs the lifecycle observer callbacks
func (e *ReviewEngine) SetEvents(events domain.ReviewEvents) {
	e.events = events
}

// SetExecutor replaces the file fan-out executor, typically with one
// sized from the performance configuration
func (e *ReviewEngine) SetExecutor(executor *ParallelExecutorImpl) {
	if executor != nil {
		e.executor = executor
	}
}

// SetMaxConcurrency bounds the number of files analyzed in parallel
func (e *ReviewEngine) SetMaxConcurrency(n int) {
	e.executor.SetMaxConcurrency(n)
}

// activeProvider is one initialized adapter participating in this run
type activeProvider struct {
	id       string
	provider domain.Provider
}

// initFailure records a provider whose initialization failed for this run
type initFailure struct {
	id  string
	err error
}

// fileOutcome is the per-file merge product, indexed by walk position so
// concurrent completion cannot disturb the canonical ordering.
type fileOutcome struct {
	path    string
	skipped bool
	warning string

	issues        []domain.Issue
	stats         domain.AnalysisStatistics
	providerCalls map[string]*domain.ProviderResult
}

// Review runs the full pipeline: walk, fan out, merge, metrics, filter.
// Only an unreadable target or a missing completion capability fail the
// whole run; every other error is recovered and represented as data.
func (e *ReviewEngine) Review(ctx context.Context, req domain.ReviewRequest) (*domain.ReviewResult, error) {
	started := time.Now()

	if e.completion == nil {
		err := domain.NewCompletionUnavailableError()
		e.emitError(err.Error())
		return nil, err
	}

	info, statErr := os.Stat(req.TargetPath)
	if statErr != nil {
		err := domain.NewTargetNotFoundError(req.TargetPath, statErr)
		e.emitError(err.Error())
		return nil, err
	}

	e.emitStart(req.TargetPath)

	scope := req.AnalysisType
	if scope == "" {
		scope = domain.AnalysisTypeFile
		if info.IsDir() {
			scope = domain.AnalysisTypeDirectory
		}
	}

	files, err := e.resolveFiles(req.TargetPath, scope, req.IncludeExtensions)
	if err != nil {
		err = domain.NewTargetNotFoundError(req.TargetPath, err)
		e.emitError(err.Error())
		return nil, err
	}

	result := &domain.ReviewResult{
		RunID:           uuid.NewString(),
		Target:          req.TargetPath,
		Issues:          []domain.Issue{},
		ProviderResults: []*domain.ProviderResult{},
		Statistics:      make(map[string]domain.AnalysisStatistics),
		GeneratedAt:     started.Format(time.RFC3339),
		Version:         version.Version,
	}

	if len(files) == 0 {
		// Nothing to analyze; even a requested fan-out has nothing to send
		result.Duration = time.Since(started)
		e.emitComplete(result.Summary)
		return result, nil
	}

	active, failures := e.prepareProviders(ctx, req)

	outcomes := e.analyzeFiles(ctx, files, active, req)

	e.mergeOutcomes(result, outcomes, active, failures, scope)

	result.Issues = FilterIssues(result.Issues, req.SeverityFilter, req.CategoryFilter)
	result.Summary = Summarize(result.Issues)
	result.Summary.FilesAnalyzed = countAnalyzed(outcomes)
	result.Duration = time.Since(started)

	e.emitComplete(result.Summary)
	return result, nil
}

func (e *ReviewEngine) resolveFiles(target string, scope domain.AnalysisType, includeExtensions []string) ([]string, error) {
	if scope == domain.AnalysisTypeFile {
		return []string{target}, nil
	}
	return e.fileReader.CollectSourceFiles(target, includeExtensions)
}

// prepareProviders instantiates every provider requested for this run.
// An initialization failure becomes a failed run-level result, never an
// aborted run.
func (e *ReviewEngine) prepareProviders(ctx context.Context, req domain.ReviewRequest) ([]activeProvider, []initFailure) {
	if !req.EnableThirdParty || e.registry == nil {
		return nil, nil
	}

	ids := e.registry.EnabledProviders()
	if len(req.ProviderIDs) > 0 {
		ids = intersect(ids, req.ProviderIDs)
	}

	var active []activeProvider
	var failures []initFailure
	for _, id := range ids {
		provider, err := e.registry.Instantiate(ctx, id)
		if err != nil {
			e.logger.Warn("provider initialization failed",
				zap.String("provider", id),
				zap.Error(err))
			failures = append(failures, initFailure{id: id, err: err})
			continue
		}
		active = append(active, activeProvider{id: id, provider: provider})
	}
	return active, failures
}

// fileReviewTask reviews one file for the parallel executor. The
// outcome lands in its walk-order slot; an unreadable file surfaces as
// a task error so the executor's aggregate names it.
type fileReviewTask struct {
	engine   *ReviewEngine
	path     string
	slot     int
	outcomes []*fileOutcome
	active   []activeProvider
	req      domain.ReviewRequest
	progress domain.TaskProgress
}

func (t *fileReviewTask) Name() string { return t.path }

func (t *fileReviewTask) IsEnabled() bool { return true }

func (t *fileReviewTask) Execute(ctx context.Context) (interface{}, error) {
	outcome := t.engine.analyzeOneFile(ctx, t.path, t.active, t.req)
	t.outcomes[t.slot] = outcome
	t.progress.Increment(1)
	if outcome.skipped {
		return nil, errors.New(outcome.warning)
	}
	return outcome, nil
}

// analyzeFiles fans the walk out over the parallel executor. Outcomes
// land in walk-order slots, so the later merge is deterministic
// regardless of completion order.
func (e *ReviewEngine) analyzeFiles(ctx context.Context, files []string, active []activeProvider, req domain.ReviewRequest) []*fileOutcome {
	outcomes := make([]*fileOutcome, len(files))

	task := e.progress.StartTask("Reviewing files", len(files))
	defer task.Complete()

	tasks := make([]domain.ExecutableTask, len(files))
	for i, path := range files {
		tasks[i] = &fileReviewTask{
			engine:   e,
			path:     path,
			slot:     i,
			outcomes: outcomes,
			active:   active,
			req:      req,
			progress: task,
		}
	}
	if err := e.executor.Execute(ctx, tasks); err != nil {
		// Skipped files are already recorded as warnings on their outcome
		e.logger.Debug("some files were not analyzed", zap.Error(err))
	}
	return outcomes
}

// analyzeOneFile runs the heuristic scanner, the AI analyzer and the
// provider fan-out for one file, then merges in the canonical order:
// heuristic, ai, providers in registration order.
func (e *ReviewEngine) analyzeOneFile(ctx context.Context, path string, active []activeProvider, req domain.ReviewRequest) *fileOutcome {
	outcome := &fileOutcome{path: path, providerCalls: make(map[string]*domain.ProviderResult)}

	content, err := e.fileReader.ReadFile(path)
	if err != nil {
		e.logger.Warn("skipping unreadable file", zap.String("file", path), zap.Error(err))
		outcome.skipped = true
		outcome.warning = domain.NewFileUnreadableError(path, err).Error()
		return outcome
	}

	text := string(content)
	language := scanner.DetectLanguage(path)
	opts := domain.AnalysisOptions{Detailed: req.Detailed}

	// AI analysis and the provider fan-out suspend on network I/O and run
	// in parallel; scanning is synchronous CPU work.
	var wg sync.WaitGroup
	var aiIssues []domain.Issue
	providerResults := make([]*domain.ProviderResult, len(active))

	wg.Add(1)
	go func() {
		defer wg.Done()
		aiIssues = e.analyzer.Analyze(ctx, path, text, language)
	}()

	for i, ap := range active {
		wg.Add(1)
		go func() {
			defer wg.Done()
			providerResults[i] = e.callProvider(ctx, ap, domain.FileInput{Path: path, Content: text, Language: language}, opts)
		}()
	}

	heuristicIssues := e.scanner.Scan(path, text, language)
	wg.Wait()

	// Canonical merge order, re-imposed regardless of completion order
	merged := make([]domain.Issue, 0, len(heuristicIssues)+len(aiIssues))
	merged = append(merged, heuristicIssues...)
	merged = append(merged, aiIssues...)
	for i, ap := range active {
		outcome.providerCalls[ap.id] = providerResults[i]
		if !providerResults[i].Failed {
			merged = append(merged, providerResults[i].Issues...)
		}
	}

	outcome.issues = merged
	outcome.stats = metrics.FileStatistics(text, merged)
	return outcome
}

// callProvider converts any adapter failure into a failed ProviderResult;
// adapter errors never propagate past this boundary.
func (e *ReviewEngine) callProvider(ctx context.Context, ap activeProvider, file domain.FileInput, opts domain.AnalysisOptions) *domain.ProviderResult {
	result, err := ap.provider.AnalyzeFile(ctx, file, opts)
	if err != nil {
		e.logger.Warn("provider analysis failed",
			zap.String("provider", ap.id),
			zap.String("file", file.Path),
			zap.Error(err))
		return &domain.ProviderResult{
			ProviderID: ap.id,
			AnalysisID: uuid.NewString(),
			Timestamp:  time.Now(),
			Issues:     []domain.Issue{},
			Statistics: domain.NewAnalysisStatistics(),
			Failed:     true,
			Error:      err.Error(),
		}
	}
	return result
}

// mergeOutcomes folds the per-file outcomes into the run result:
// issue concatenation in walk order, metric roll-up, and one run-level
// ProviderResult per provider (failed ones included).
func (e *ReviewEngine) mergeOutcomes(result *domain.ReviewResult, outcomes []*fileOutcome, active []activeProvider, failures []initFailure, scope domain.AnalysisType) {
	totalCode, totalComplexity := 0, 0

	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if o.skipped {
			result.Warnings = append(result.Warnings, o.warning)
			continue
		}
		result.Issues = append(result.Issues, o.issues...)
		result.Statistics[o.path] = o.stats
		totalCode += o.stats.CodeLines
		totalComplexity += o.stats.Complexity
	}

	// The issue penalty applies at directory scope only, on the merged
	// pre-filter count.
	mi := metrics.MaintainabilityIndex(totalCode, totalComplexity)
	if scope == domain.AnalysisTypeDirectory {
		mi = metrics.AggregateMaintainabilityIndex(totalCode, totalComplexity, len(result.Issues))
	}
	result.Metrics = domain.ReviewMetrics{
		LinesOfCode:          totalCode,
		Complexity:           totalComplexity,
		MaintainabilityIndex: mi,
	}

	// Run-level provider results in registration order; initialization
	// failures keep their position.
	failed := make(map[string]error, len(failures))
	for _, f := range failures {
		failed[f.id] = f.err
	}

	requested := make([]string, 0, len(active)+len(failures))
	for _, ap := range active {
		requested = append(requested, ap.id)
	}
	for _, f := range failures {
		requested = append(requested, f.id)
	}
	if e.registry != nil {
		requested = orderByRegistration(requested, e.registry)
	}

	for _, id := range requested {
		if err, ok := failed[id]; ok {
			result.ProviderResults = append(result.ProviderResults, &domain.ProviderResult{
				ProviderID: id,
				AnalysisID: uuid.NewString(),
				Timestamp:  time.Now(),
				Issues:     []domain.Issue{},
				Statistics: domain.NewAnalysisStatistics(),
				Failed:     true,
				Error:      err.Error(),
			})
			continue
		}
		result.ProviderResults = append(result.ProviderResults, aggregateProviderRun(id, outcomes))
	}
}

// aggregateProviderRun folds one provider's per-file calls into one
// run-level result. Failed is set only when every call failed; partial
// failures keep the successful issues and record the first error.
func aggregateProviderRun(id string, outcomes []*fileOutcome) *domain.ProviderResult {
	run := &domain.ProviderResult{
		ProviderID: id,
		AnalysisID: uuid.NewString(),
		Timestamp:  time.Now(),
		Issues:     []domain.Issue{},
	}

	calls, succeeded := 0, 0
	var firstErr string
	var version string

	for _, o := range outcomes {
		if o == nil || o.skipped {
			continue
		}
		call, ok := o.providerCalls[id]
		if !ok {
			continue
		}
		calls++
		run.Duration += call.Duration
		if call.Failed {
			if firstErr == "" {
				firstErr = call.Error
			}
			continue
		}
		succeeded++
		run.Issues = append(run.Issues, call.Issues...)
		if version == "" {
			version = call.ProviderVersion
		}
	}

	run.ProviderVersion = version
	run.Statistics = metrics.StatisticsFromIssues(run.Issues)
	run.Error = firstErr
	run.Failed = calls > 0 && succeeded == 0
	return run
}

// FilterIssues applies the caller's severity and category filters. The
// operation is idempotent: filtering a filtered list is a no-op.
func FilterIssues(issues []domain.Issue, minSeverity domain.IssueSeverity, categories []domain.IssueCategory) []domain.Issue {
	allowed := make(map[domain.IssueCategory]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}

	filtered := make([]domain.Issue, 0, len(issues))
	for _, is := range issues {
		if !domain.MeetsSeverity(is.Severity, minSeverity) {
			continue
		}
		if len(categories) > 0 && !allowed[is.Category] {
			continue
		}
		filtered = append(filtered, is)
	}
	return filtered
}

// Summarize computes the post-filter summary counts
func Summarize(issues []domain.Issue) domain.ReviewSummary {
	s := domain.ReviewSummary{TotalIssues: len(issues)}
	for _, is := range issues {
		switch is.Severity {
		case domain.SeverityCritical:
			s.CriticalIssues++
		case domain.SeverityHigh:
			s.HighIssues++
		case domain.SeverityMedium:
			s.MediumIssues++
		case domain.SeverityLow:
			s.LowIssues++
		case domain.SeverityInfo:
			s.InfoIssues++
		}
	}
	return s
}

func countAnalyzed(outcomes []*fileOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o != nil && !o.skipped {
			n++
		}
	}
	return n
}

func intersect(ordered, allowed []string) []string {
	want := make(map[string]bool, len(allowed))
	for _, id := range allowed {
		want[id] = true
	}
	var out []string
	for _, id := range ordered {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

func orderByRegistration(ids []string, registry *ProviderRegistry) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []string
	for _, t := range registry.ListAvailable() {
		if want[t.ID] {
			out = append(out, t.ID)
		}
	}
	// Preserve ids the registry does not know about
	known := make(map[string]bool, len(out))
	for _, id := range out {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			out = append(out, id)
		}
	}
	return out
}

func (e *ReviewEngine) emitStart(target string) {
	if e.events.OnStart != nil {
		e.events.OnStart(target)
	}
}

func (e *ReviewEngine) emitComplete(summary domain.ReviewSummary) {
	if e.events.OnComplete != nil {
		e.events.OnComplete(summary)
	}
}

func (e *ReviewEngine) emitError(message string) {
	if e.events.OnError != nil {
		e.events.OnError(message)
	}
}

var _ domain.ReviewService = (*ReviewEngine)(nil)
