package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/evidence"
)

// Result is the outcome of a research run
type Result struct {
	RunID    string
	Question string
	Answer   string
	// BestEffort is true when the step budget ran out before the chooser decided to answer
	BestEffort bool
	// Steps is the number of search and scrape iterations taken
	Steps int
	// Actions lists every chosen action in order, including the final Answer
	Actions  []Action
	Queries  []evidence.QueryRecord
	Scrapes  []evidence.ScrapeRecord
	Usage    components.LLMUsage
	Duration time.Duration
}

// Researcher runs the research loop: it asks the chooser for an action, runs
// searches and scrapes until the chooser answers or the step budget is spent,
// then synthesizes exactly one answer.
// A Researcher is safe for concurrent use, every Run owns its own evidence.
type Researcher struct {
	chooser     ActionChooser
	synthesizer AnswerSynthesizer
	searcher    Searcher
	scraper     Scraper
	notify      observers
	Config
}

// New returns a Researcher. A LogObserver on the configured logger always runs first.
func New(chooser ActionChooser, synthesizer AnswerSynthesizer, searcher Searcher, scraper Scraper, opts ...Option) *Researcher {
	r := &Researcher{
		chooser:     chooser,
		synthesizer: synthesizer,
		searcher:    searcher,
		scraper:     scraper,
	}
	for _, opt := range opts {
		opt(&r.Config)
	}
	r.setDefaults()
	r.notify = append(observers{NewLogObserver(r.logger)}, r.observers...)
	return r
}

// MaxSteps returns the step budget of every run
func (r *Researcher) MaxSteps() int {
	return r.maxSteps
}

// Run researches question and returns the synthesized answer.
// Budget exhaustion is not an error, the answer is then written in best effort mode.
func (r *Researcher) Run(ctx context.Context, question string, opts ...RunOption) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	run := RunInfo{
		ID:       uuid.NewString(),
		Question: question,
		Budget:   r.maxSteps,
	}
	task := &Task{
		Question: question,
		History:  cfg.history,
		Evidence: evidence.New(r.maxSteps),
		Now:      r.now(),
	}
	result := &Result{
		RunID:    run.ID,
		Question: question,
	}
	startTime := r.now()
	r.notify.OnStart(ctx, run)
	var err error
	defer func() {
		result.Steps = task.Evidence.Step()
		result.Queries = task.Evidence.Queries()
		result.Scrapes = task.Evidence.Scrapes()
		result.Usage = task.Usage
		result.Duration = r.now().Sub(startTime)
		r.notify.OnFinish(ctx, run, result, err)
	}()

	for !task.Evidence.ShouldStop() {
		if err = ctx.Err(); err != nil {
			return result, err
		}
		step := task.Evidence.Step()
		task.Now = r.now()
		r.notify.OnIterationStart(ctx, run, step)
		var action Action
		if action, err = r.chooser.Choose(ctx, task); err != nil {
			err = fmt.Errorf("choose action: %w", err)
			return result, err
		}
		result.Actions = append(result.Actions, action)
		r.notify.OnAction(ctx, run, step, action)
		switch a := action.(type) {
		case Search:
			if err = r.search(ctx, task, a); err != nil {
				return result, err
			}
		case Scrape:
			if err = r.scrape(ctx, task, a); err != nil {
				return result, err
			}
		case Answer:
			err = r.answer(ctx, task, ModeComprehensive, cfg.onChunk, result)
			return result, err
		default:
			err = fmt.Errorf("choose action: %w: unexpected action %T", ErrInvalidDecision, action)
			return result, err
		}
		task.Evidence.IncrementStep()
	}
	result.BestEffort = true
	err = r.answer(ctx, task, ModeBestEffort, cfg.onChunk, result)
	return result, err
}

func (r *Researcher) search(ctx context.Context, task *Task, action Search) error {
	results, err := r.searcher.Search(ctx, action.Query(), r.resultCount)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	task.Evidence.ReportQueries(evidence.QueryRecord{
		Query:   action.Query(),
		Results: results,
	})
	return nil
}

func (r *Researcher) scrape(ctx context.Context, task *Task, action Scrape) error {
	report, err := r.scraper.Scrape(ctx, action.URLs())
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	if report == nil {
		return errors.New("scrape: no report")
	}
	records := make([]evidence.ScrapeRecord, 0, len(report.Pages))
	for _, page := range report.Pages {
		if !page.Success {
			r.logger.WarnContext(ctx, "scrape failed", "url", page.URL, "error", page.Err)
			continue
		}
		records = append(records, evidence.ScrapeRecord{
			URL:     page.URL,
			Content: page.Content,
		})
	}
	task.Evidence.ReportScrapes(records...)
	return nil
}

func (r *Researcher) answer(ctx context.Context, task *Task, mode Mode, onChunk func(string), result *Result) error {
	task.Now = r.now()
	answer, err := r.synthesizer.Synthesize(ctx, task, mode, onChunk)
	if err != nil {
		return fmt.Errorf("synthesize answer: %w", err)
	}
	result.Answer = answer
	return nil
}
