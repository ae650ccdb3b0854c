package blogbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-blogbook/internal/fileutil"
	"github.com/alnah/go-blogbook/internal/metrics"
	"github.com/alnah/go-blogbook/internal/tree"
)

// State is a pipeline run phase.
type State int

const (
	StateIdle State = iota
	StateIndexing
	StateValidated
	StateConverting
	StateMerging
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIndexing:
		return "indexing"
	case StateValidated:
		return "validated"
	case StateConverting:
		return "converting"
	case StateMerging:
		return "merging"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Pipeline defaults.
const (
	DefaultConcurrency = 4
	DefaultMergedName  = "All-Blogs-Merged.pdf"
	DefaultOutputDir   = "pdf"
)

// PipelineConfig describes where documents come from and where artifacts go.
type PipelineConfig struct {
	// ContentRoot is the directory document paths resolve against.
	ContentRoot string
	OutputDir   string
	MergedName  string
	// PathPrefix is stripped from index paths before resolving them under
	// ContentRoot. It is normally the tree's root label.
	PathPrefix  string
	Concurrency int
	MarkdownExt string
	// Clean removes OutputDir before converting.
	Clean bool
	// HTML also writes the rendered page next to each PDF.
	HTML bool
	Tree tree.Config
}

// DefaultPipelineConfig returns the configuration used by the CLI.
func DefaultPipelineConfig() PipelineConfig {
	treeCfg := tree.DefaultConfig()
	return PipelineConfig{
		ContentRoot: ".",
		OutputDir:   DefaultOutputDir,
		MergedName:  DefaultMergedName,
		PathPrefix:  treeCfg.RootLabel,
		Concurrency: DefaultConcurrency,
		MarkdownExt: treeCfg.MarkdownExt,
		Clean:       true,
		Tree:        treeCfg,
	}
}

// Failure records one document that could not be converted.
type Failure struct {
	Path string
	Err  error
}

// Summary reports a finished run.
type Summary struct {
	RunID      string
	State      State
	Total      int
	Attempted  int
	Succeeded  int
	Failed     int
	Skipped    int
	Degraded   int
	MergedPath string
	Failures   []Failure
	Duration   time.Duration
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the run logger. It is also handed to converters.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMerger replaces the pdfcpu merger.
func WithMerger(m Merger) PipelineOption {
	return func(p *Pipeline) {
		p.merger = m
	}
}

// WithRecorder records run metrics.
func WithRecorder(r metrics.Recorder) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithPool supplies the converter pool. The pipeline does not close it.
func WithPool(pool *ConverterPool) PipelineOption {
	return func(p *Pipeline) {
		p.pool = pool
	}
}

// WithConverterOptions configures the converters of the pipeline's own pool.
// Ignored when WithPool is used.
func WithConverterOptions(opts ...Option) PipelineOption {
	return func(p *Pipeline) {
		p.convOpts = append(p.convOpts, opts...)
	}
}

// WithStateHook is called on every state transition. detail is empty except
// while converting, where it reads "chunk i/M".
func WithStateHook(fn func(state State, detail string)) PipelineOption {
	return func(p *Pipeline) {
		p.onState = fn
	}
}

// Pipeline indexes a content tree, converts every document in bounded
// chunks and merges the successes. Create with NewPipeline and Close when
// done. A Pipeline runs one job at a time.
type Pipeline struct {
	cfg      PipelineConfig
	logger   *slog.Logger
	merger   Merger
	recorder metrics.Recorder
	pool     *ConverterPool
	ownsPool bool
	convOpts []Option
	onState  func(State, string)

	mu    sync.Mutex
	state State
}

// NewPipeline validates cfg and applies opts. A zero Concurrency uses
// DefaultConcurrency.
func NewPipeline(cfg PipelineConfig, opts ...PipelineOption) (*Pipeline, error) {
	if cfg.Concurrency < 0 {
		return nil, fmt.Errorf("%w: %d (must be positive)", ErrInvalidConcurrency, cfg.Concurrency)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.MergedName == "" {
		cfg.MergedName = DefaultMergedName
	}
	if cfg.MarkdownExt == "" {
		cfg.MarkdownExt = ".md"
	}

	p := &Pipeline{
		cfg:      cfg,
		logger:   slog.New(slog.DiscardHandler),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.merger == nil {
		p.merger = NewPDFMerger(p.logger)
	}
	if p.pool == nil {
		convOpts := append([]Option{WithLogger(p.logger)}, p.convOpts...)
		p.pool = NewConverterPool(cfg.Concurrency, convOpts...)
		p.ownsPool = true
	}
	return p, nil
}

// State returns the current run phase.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State, detail string) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	if p.onState != nil {
		p.onState(s, detail)
	}
}

// Run builds the tree under root, validates it and converts its documents.
func (p *Pipeline) Run(ctx context.Context, root string) (*Summary, error) {
	run := p.begin()
	p.setState(StateIndexing, "")

	builder, err := tree.NewBuilder(p.cfg.Tree, run.logger)
	if err != nil {
		return p.fail(run, err)
	}
	node, err := builder.Build(root, "")
	if err != nil {
		return p.fail(run, err)
	}
	return p.validated(ctx, run, node)
}

// RunIndexFile loads a persisted index, validates it and converts its
// documents.
func (p *Pipeline) RunIndexFile(ctx context.Context, indexPath string) (*Summary, error) {
	run := p.begin()
	p.setState(StateIndexing, "")

	node, err := tree.ReadIndex(indexPath)
	if err != nil {
		return p.fail(run, err)
	}
	return p.validated(ctx, run, node)
}

// Close releases the browsers of a pool the pipeline created itself.
func (p *Pipeline) Close() error {
	if p.ownsPool && p.pool != nil {
		return p.pool.Close()
	}
	return nil
}

type runState struct {
	summary *Summary
	logger  *slog.Logger
	start   time.Time
}

func (p *Pipeline) begin() *runState {
	id := uuid.NewString()
	return &runState{
		summary: &Summary{RunID: id},
		logger:  p.logger.With("run_id", id),
		start:   time.Now(),
	}
}

func (p *Pipeline) fail(run *runState, err error) (*Summary, error) {
	p.setState(StateFailed, "")
	p.finish(run, StateFailed)
	run.logger.Error("run failed", "error", err)
	return run.summary, err
}

func (p *Pipeline) finish(run *runState, s State) {
	run.summary.State = s
	run.summary.Duration = time.Since(run.start)
	p.recorder.ObserveRun(run.summary.Duration, s.String())
}

func (p *Pipeline) validated(ctx context.Context, run *runState, node *tree.Node) (*Summary, error) {
	if err := tree.Validate(node); err != nil {
		return p.fail(run, err)
	}
	p.setState(StateValidated, "")
	return p.convert(ctx, run, node)
}

// docJob pairs an index entry with its resolved paths.
type docJob struct {
	indexPath string
	source    string
	output    string
	escapes   bool
}

// docResult is written by exactly one conversion goroutine.
type docResult struct {
	degraded bool
}

func (p *Pipeline) convert(ctx context.Context, run *runState, node *tree.Node) (*Summary, error) {
	docs := tree.Documents(node, p.cfg.MarkdownExt)
	sum := run.summary
	sum.Total = len(docs)

	if len(docs) == 0 {
		run.logger.Warn("no documents to convert")
		p.setState(StateDone, "")
		p.finish(run, StateDone)
		return sum, nil
	}

	if p.cfg.Clean {
		if err := p.cleanOutput(); err != nil {
			return p.fail(run, err)
		}
	}

	jobs := make([]docJob, len(docs))
	for i, doc := range docs {
		jobs[i] = p.resolve(doc.Path)
	}

	results := make([]docResult, len(jobs))
	var chunkStart time.Time
	onChunk := func(chunk, total int) {
		if !chunkStart.IsZero() {
			p.recorder.ObserveChunk(time.Since(chunkStart))
		}
		chunkStart = time.Now()
		detail := fmt.Sprintf("chunk %d/%d", chunk, total)
		p.setState(StateConverting, detail)
		run.logger.Info("converting", "chunk", detail)
	}

	task := func(ctx context.Context, i int, job docJob) error {
		start := time.Now()
		degraded, err := p.convertOne(ctx, job)
		results[i].degraded = degraded
		p.recorder.ObserveDocument(time.Since(start), outcomeOf(err, degraded))
		return err
	}

	errs := RunChunked(ctx, jobs, p.cfg.Concurrency, task, onChunk)
	if !chunkStart.IsZero() {
		p.recorder.ObserveChunk(time.Since(chunkStart))
	}
	p.recorder.SetBrowsers(p.pool.Created())

	var outputs []string
	for i, err := range errs {
		switch {
		case errors.Is(err, ErrSourceMissing):
			sum.Skipped++
			run.logger.Warn("document skipped", "path", jobs[i].indexPath, "error", err)
		case err != nil:
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{Path: jobs[i].indexPath, Err: err})
			run.logger.Error("document failed", "path", jobs[i].indexPath, "error", err)
		default:
			sum.Succeeded++
			if results[i].degraded {
				sum.Degraded++
			}
			outputs = append(outputs, jobs[i].output)
		}
	}
	sum.Attempted = sum.Total - sum.Skipped

	if len(outputs) == 0 {
		run.logger.Warn("no documents converted, skipping merge")
		p.setState(StateDone, "")
		p.finish(run, StateDone)
		return sum, nil
	}

	p.setState(StateMerging, "")
	merged := filepath.Join(p.cfg.OutputDir, p.cfg.MergedName)
	mergeStart := time.Now()
	err := p.merger.Merge(ctx, outputs, merged)
	p.recorder.ObserveMerge(time.Since(mergeStart), err == nil)
	if err != nil {
		return p.fail(run, err)
	}
	sum.MergedPath = merged

	p.setState(StateDone, "")
	p.finish(run, StateDone)
	run.logger.Info("run complete",
		"attempted", sum.Attempted,
		"succeeded", sum.Succeeded,
		"failed", sum.Failed,
		"skipped", sum.Skipped,
		"duration", sum.Duration.Round(time.Millisecond))
	return sum, nil
}

// convertOne renders a single document and reports whether it degraded.
func (p *Pipeline) convertOne(ctx context.Context, job docJob) (bool, error) {
	if job.escapes {
		return false, fmt.Errorf("%w: %s", ErrPathEscape, job.indexPath)
	}
	if !fileutil.FileExists(job.source) {
		return false, fmt.Errorf("%w: %s", ErrSourceMissing, job.source)
	}

	conv, err := p.pool.Acquire()
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrConversion, job.source, err)
	}
	defer p.pool.Release(conv)

	res, err := conv.RenderDocument(ctx, job.source, job.output)
	if err != nil {
		return false, err
	}

	if p.cfg.HTML {
		htmlPath := fileutil.ReplaceExt(job.output, ".html")
		if err := fileutil.WriteFile(htmlPath, []byte(res.HTML)); err != nil {
			return res.Degraded, fmt.Errorf("%w: %s: %w", ErrConversion, job.source, err)
		}
	}
	return res.Degraded, nil
}

// resolve maps an index path such as "blogs/go/intro.md" to its source
// under ContentRoot and its PDF under OutputDir. A path that climbs out of
// either directory is marked as escaping and is never read or written.
func (p *Pipeline) resolve(indexPath string) docJob {
	rel := indexPath
	if p.cfg.PathPrefix != "" {
		rel = strings.TrimPrefix(rel, strings.TrimSuffix(p.cfg.PathPrefix, "/")+"/")
	}
	rel = filepath.FromSlash(rel)
	job := docJob{
		indexPath: indexPath,
		source:    filepath.Join(p.cfg.ContentRoot, rel),
		output:    filepath.Join(p.cfg.OutputDir, fileutil.ReplaceExt(rel, ".pdf")),
	}
	job.escapes = !fileutil.Within(p.cfg.ContentRoot, job.source) ||
		!fileutil.Within(p.cfg.OutputDir, job.output)
	return job
}

// cleanOutput removes the output directory. It refuses, with a warning, when
// the directory is the filesystem root, the working directory or one of its
// parents, or when it holds the content root.
func (p *Pipeline) cleanOutput() error {
	dir, err := filepath.Abs(p.cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("cleaning output directory: %w", err)
	}
	cwd, _ := os.Getwd()
	switch {
	case dir == filepath.VolumeName(dir)+string(filepath.Separator),
		cwd != "" && fileutil.Within(dir, cwd),
		fileutil.Within(dir, p.cfg.ContentRoot):
		p.logger.Warn("refusing to clean output directory", "path", dir, "content_root", p.cfg.ContentRoot)
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("cleaning output directory: %w", err)
	}
	return nil
}

func outcomeOf(err error, degraded bool) metrics.Outcome {
	switch {
	case errors.Is(err, ErrSourceMissing):
		return metrics.OutcomeSkipped
	case err != nil:
		return metrics.OutcomeFailed
	case degraded:
		return metrics.OutcomeDegraded
	default:
		return metrics.OutcomeSuccess
	}
}
