package simple

import (
	"github.com/bububa/deepsearch/components/systemprompt"
)

// Generator renders a fixed prompt followed by its context providers
type Generator struct {
	systemprompt.BaseGenerator
	content string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(content string, options ...Option) *Generator {
	ret := &Generator{content: content}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (g *Generator) Generate() string {
	promptParts := []string{g.content, ""}
	promptParts = append(promptParts, g.RenderContext()...)
	return systemprompt.Join(promptParts)
}
