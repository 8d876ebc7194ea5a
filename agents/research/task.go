package research

import (
	"time"

	"github.com/bububa/deepsearch/components"
	"github.com/bububa/deepsearch/components/evidence"
	"github.com/bububa/deepsearch/components/systemprompt"
)

// Mode selects the answer instructions
type Mode int

const (
	// ModeComprehensive is used when the chooser decided the evidence is sufficient
	ModeComprehensive Mode = iota
	// ModeBestEffort is used when the step budget ran out before an answer was chosen
	ModeBestEffort
)

func (m Mode) String() string {
	if m == ModeBestEffort {
		return "best_effort"
	}
	return "comprehensive"
}

// Task is the state shared with the chooser and the synthesizer during one run
type Task struct {
	Question string
	// History is the conversation before the question
	History  []components.Message
	Evidence *evidence.Context
	// Now is the wall clock time of the current iteration
	Now time.Time
	// Usage accumulates token usage reported by model calls
	Usage components.LLMUsage
}

// ContextProviders returns the prompt context shared by chooser and synthesizer
func (t *Task) ContextProviders() []systemprompt.ContextProvider {
	return t.contextProviders(true)
}

// contextProviders leaves the conversation out when it is sent as chat messages
func (t *Task) contextProviders(withHistory bool) []systemprompt.ContextProvider {
	providers := []systemprompt.ContextProvider{
		systemprompt.NewProviderFunc("Current date and time", func() string {
			return t.Now.Format("2006-01-02 15:04:05 MST (Monday)")
		}),
	}
	if withHistory {
		providers = append(providers, systemprompt.NewProviderFunc("Conversation history", func() string {
			return components.RenderHistory(t.History)
		}))
	}
	if t.Evidence != nil {
		providers = append(providers, t.Evidence.ContextProviders()...)
	}
	return providers
}
