package research

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bububa/deepsearch/agents/research"

// TracingObserver records a research.run span per run with one research.iteration
// child span per step. Exporter setup is left to the tracer provider.
// threadsafe
type TracingObserver struct {
	tracer trace.Tracer
	runs   map[string]*runSpans
	mtx    sync.Mutex
}

type runSpans struct {
	ctx       context.Context
	run       trace.Span
	iteration trace.Span
}

var _ Observer = (*TracingObserver)(nil)

// NewTracingObserver returns a TracingObserver, nil tracer uses the global provider
func NewTracingObserver(tracer trace.Tracer) *TracingObserver {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &TracingObserver{
		tracer: tracer,
		runs:   make(map[string]*runSpans),
	}
}

func (o *TracingObserver) OnStart(ctx context.Context, run RunInfo) {
	ctx, span := o.tracer.Start(ctx, "research.run",
		trace.WithAttributes(
			attribute.String("research.run_id", run.ID),
			attribute.String("research.question", run.Question),
			attribute.Int("research.budget", run.Budget),
		),
	)
	o.mtx.Lock()
	o.runs[run.ID] = &runSpans{ctx: ctx, run: span}
	o.mtx.Unlock()
}

func (o *TracingObserver) OnIterationStart(ctx context.Context, run RunInfo, step int) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	spans, found := o.runs[run.ID]
	if !found {
		return
	}
	if spans.iteration != nil {
		spans.iteration.End()
	}
	_, spans.iteration = o.tracer.Start(spans.ctx, "research.iteration",
		trace.WithAttributes(attribute.Int("research.step", step)),
	)
}

func (o *TracingObserver) OnAction(ctx context.Context, run RunInfo, step int, action Action) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	spans, found := o.runs[run.ID]
	if !found || spans.iteration == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("research.action.type", action.Type()),
		attribute.String("research.action.title", action.Title()),
	}
	switch a := action.(type) {
	case Search:
		attrs = append(attrs, attribute.String("research.action.query", a.Query()))
	case Scrape:
		attrs = append(attrs, attribute.String("research.action.urls", strings.Join(a.URLs(), ",")))
	}
	spans.iteration.SetAttributes(attrs...)
	spans.iteration.AddEvent("action_chosen", trace.WithAttributes(attrs...))
}

func (o *TracingObserver) OnFinish(ctx context.Context, run RunInfo, result *Result, err error) {
	o.mtx.Lock()
	spans, found := o.runs[run.ID]
	delete(o.runs, run.ID)
	o.mtx.Unlock()
	if !found {
		return
	}
	if spans.iteration != nil {
		spans.iteration.End()
	}
	if result != nil {
		spans.run.SetAttributes(
			attribute.Int("research.steps", result.Steps),
			attribute.Bool("research.best_effort", result.BestEffort),
			attribute.Int("research.usage.input_tokens", result.Usage.InputTokens),
			attribute.Int("research.usage.output_tokens", result.Usage.OutputTokens),
		)
	}
	if err != nil {
		spans.run.RecordError(err)
		spans.run.SetStatus(codes.Error, err.Error())
	} else {
		spans.run.SetStatus(codes.Ok, "")
	}
	spans.run.End()
}
