package research

import (
	"context"
	"log/slog"
	"sync"

	"go.uber.org/atomic"
)

// RunInfo identifies a run for observers
type RunInfo struct {
	ID       string
	Question string
	Budget   int
}

// Observer is notified at fixed points of a run. Calls are synchronous and in order.
type Observer interface {
	OnStart(ctx context.Context, run RunInfo)
	OnIterationStart(ctx context.Context, run RunInfo, step int)
	OnAction(ctx context.Context, run RunInfo, step int, action Action)
	// OnFinish is called once per run, result is partial when err is not nil
	OnFinish(ctx context.Context, run RunInfo, result *Result, err error)
}

// NopObserver implements Observer with no-ops, embed it to implement a subset
type NopObserver struct{}

func (NopObserver) OnStart(context.Context, RunInfo)                  {}
func (NopObserver) OnIterationStart(context.Context, RunInfo, int)    {}
func (NopObserver) OnAction(context.Context, RunInfo, int, Action)    {}
func (NopObserver) OnFinish(context.Context, RunInfo, *Result, error) {}

type observers []Observer

func (l observers) OnStart(ctx context.Context, run RunInfo) {
	for _, o := range l {
		o.OnStart(ctx, run)
	}
}

func (l observers) OnIterationStart(ctx context.Context, run RunInfo, step int) {
	for _, o := range l {
		o.OnIterationStart(ctx, run, step)
	}
}

func (l observers) OnAction(ctx context.Context, run RunInfo, step int, action Action) {
	for _, o := range l {
		o.OnAction(ctx, run, step, action)
	}
}

func (l observers) OnFinish(ctx context.Context, run RunInfo, result *Result, err error) {
	for _, o := range l {
		o.OnFinish(ctx, run, result, err)
	}
}

// LogObserver logs run progress
type LogObserver struct {
	logger *slog.Logger
}

var _ Observer = (*LogObserver)(nil)

func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnStart(ctx context.Context, run RunInfo) {
	o.logger.InfoContext(ctx, "research started", "run_id", run.ID, "question", run.Question, "budget", run.Budget)
}

func (o *LogObserver) OnIterationStart(ctx context.Context, run RunInfo, step int) {
	o.logger.DebugContext(ctx, "choosing action", "run_id", run.ID, "step", step)
}

func (o *LogObserver) OnAction(ctx context.Context, run RunInfo, step int, action Action) {
	attrs := []any{"run_id", run.ID, "step", step, "type", action.Type(), "title", action.Title()}
	switch a := action.(type) {
	case Search:
		attrs = append(attrs, "query", a.Query())
	case Scrape:
		attrs = append(attrs, "urls", a.URLs())
	}
	o.logger.InfoContext(ctx, "action chosen", attrs...)
	o.logger.DebugContext(ctx, "action reasoning", "run_id", run.ID, "step", step, "reasoning", action.Reasoning())
}

func (o *LogObserver) OnFinish(ctx context.Context, run RunInfo, result *Result, err error) {
	if err != nil {
		o.logger.ErrorContext(ctx, "research failed", "run_id", run.ID, "steps", result.Steps, "error", err)
		return
	}
	o.logger.InfoContext(ctx, "research finished",
		"run_id", run.ID,
		"steps", result.Steps,
		"best_effort", result.BestEffort,
		"queries", len(result.Queries),
		"scrapes", len(result.Scrapes),
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens,
		"duration", result.Duration,
	)
}

// Annotation is a chosen action published on an AnnotationChannel
type Annotation struct {
	RunID  string
	Step   int
	Action Action
}

// AnnotationChannel publishes every chosen action on a bounded channel.
// Sends never block the run: an annotation that does not fit is dropped.
type AnnotationChannel struct {
	NopObserver
	ch      chan Annotation
	closed  bool
	mtx     sync.Mutex
	sent    atomic.Int64
	dropped atomic.Int64
}

var _ Observer = (*AnnotationChannel)(nil)

func NewAnnotationChannel(capacity int) *AnnotationChannel {
	if capacity <= 0 {
		capacity = 1
	}
	return &AnnotationChannel{ch: make(chan Annotation, capacity)}
}

// C returns the receive side of the channel
func (a *AnnotationChannel) C() <-chan Annotation {
	return a.ch
}

func (a *AnnotationChannel) OnAction(ctx context.Context, run RunInfo, step int, action Action) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.closed {
		a.dropped.Inc()
		return
	}
	select {
	case a.ch <- Annotation{RunID: run.ID, Step: step, Action: action}:
		a.sent.Inc()
	default:
		a.dropped.Inc()
	}
}

// Close closes the channel so a consumer ranging over C can finish.
// Later annotations are counted as dropped. Close is idempotent.
func (a *AnnotationChannel) Close() {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	close(a.ch)
}

// Sent returns the number of delivered annotations
func (a *AnnotationChannel) Sent() int64 {
	return a.sent.Load()
}

// Dropped returns the number of annotations discarded because the channel was full or closed
func (a *AnnotationChannel) Dropped() int64 {
	return a.dropped.Load()
}
