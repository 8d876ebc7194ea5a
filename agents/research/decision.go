package research

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/bububa/deepsearch/schema"
)

var validate = validator.New()

// Decision is the structured reply requested from the model on every iteration
type Decision struct {
	schema.Base
	Title     string     `json:"title" jsonschema:"title=title,description=A short title for the next action shown to the user such as 'Searching for the population of Paris'." validate:"required"`
	Reasoning string     `json:"reasoning" jsonschema:"title=reasoning,description=Why this action is the best next step." validate:"required"`
	Type      ActionType `json:"type" jsonschema:"title=type,enum=search,enum=scrape,enum=answer,description=search the web for more results; scrape the full content of urls; answer the question with the information gathered." validate:"required,oneof=search scrape answer"`
	Query     string     `json:"query,omitempty" jsonschema:"title=query,description=The web search query. Required when type is search." validate:"required_if=Type search"`
	URLs      []string   `json:"urls,omitempty" jsonschema:"title=urls,description=The urls to scrape. Required when type is scrape." validate:"required_if=Type scrape"`
}

// Action validates the decision and converts it into an Action.
// Payload fields that do not belong to the decision type are ignored.
func (d *Decision) Action() (Action, error) {
	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDecision, err)
	}
	switch d.Type {
	case SearchAction:
		return NewSearch(d.Title, d.Reasoning, d.Query)
	case ScrapeAction:
		return NewScrape(d.Title, d.Reasoning, d.URLs)
	case AnswerAction:
		return NewAnswer(d.Title, d.Reasoning), nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidDecision, d.Type)
}
