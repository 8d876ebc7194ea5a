package research

import (
	"errors"
	"fmt"
	"strings"
)

// ActionType is the kind of a research action
type ActionType = string

const (
	SearchAction ActionType = "search"
	ScrapeAction ActionType = "scrape"
	AnswerAction ActionType = "answer"
)

// Action is one decision of the chooser: Search, Scrape or Answer
type Action interface {
	Type() ActionType
	// Title is a short human readable label of the action
	Title() string
	// Reasoning is the rationale given by the model
	Reasoning() string
	isAction()
}

type actionMeta struct {
	title     string
	reasoning string
}

func (m actionMeta) Title() string {
	return m.title
}

func (m actionMeta) Reasoning() string {
	return m.reasoning
}

// Search runs a web search
type Search struct {
	actionMeta
	query string
}

// NewSearch returns a Search action, the query must not be blank
func NewSearch(title string, reasoning string, query string) (Search, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Search{}, fmt.Errorf("%w: search without query", ErrInvalidDecision)
	}
	return Search{actionMeta: actionMeta{title: title, reasoning: reasoning}, query: query}, nil
}

func (a Search) Type() ActionType { return SearchAction }
func (a Search) Query() string    { return a.query }
func (Search) isAction()          {}

func (a Search) String() string {
	return fmt.Sprintf("search %q", a.query)
}

// Scrape fetches a non empty list of urls
type Scrape struct {
	actionMeta
	urls []string
}

// NewScrape returns a Scrape action, urls must contain at least one non blank url.
// Links without a scheme are fetched over https.
func NewScrape(title string, reasoning string, urls []string) (Scrape, error) {
	list := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u == "" {
			continue
		}
		if !strings.Contains(u, "://") {
			u = "https://" + strings.TrimPrefix(u, "//")
		}
		list = append(list, u)
	}
	if len(list) == 0 {
		return Scrape{}, fmt.Errorf("%w: scrape without urls", ErrInvalidDecision)
	}
	return Scrape{actionMeta: actionMeta{title: title, reasoning: reasoning}, urls: list}, nil
}

func (a Scrape) Type() ActionType { return ScrapeAction }
func (Scrape) isAction()          {}

// URLs returns a copy of the urls to scrape
func (a Scrape) URLs() []string {
	ret := make([]string, len(a.urls))
	copy(ret, a.urls)
	return ret
}

func (a Scrape) String() string {
	return fmt.Sprintf("scrape %s", strings.Join(a.urls, ", "))
}

// Answer stops the research and synthesizes the answer
type Answer struct {
	actionMeta
}

func NewAnswer(title string, reasoning string) Answer {
	return Answer{actionMeta: actionMeta{title: title, reasoning: reasoning}}
}

func (a Answer) Type() ActionType { return AnswerAction }
func (Answer) isAction()          {}

func (a Answer) String() string {
	return "answer"
}

var (
	// ErrInvalidDecision is returned when the model decision lacks a payload its type requires
	ErrInvalidDecision = errors.New("invalid decision")
	// ErrEmptyQuestion is returned when Run is called with a blank question
	ErrEmptyQuestion = errors.New("empty question")
)
