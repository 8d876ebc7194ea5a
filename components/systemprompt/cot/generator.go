package cot

import (
	"fmt"

	"github.com/bububa/deepsearch/components/systemprompt"
)

const (
	sectionIdentity = "IDENTITY and PURPOSE"
	sectionSteps    = "INTERNAL ASSISTANT STEPS"
	sectionOutput   = "OUTPUT INSTRUCTIONS"
)

// Generator is Chain-of-Thought system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	background      []string
	steps           []string
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{"- This is a conversation with a helpful and friendly AI assistant."}
	}
	ret.outputInstructs = append(ret.outputInstructs, "- Always respond using the proper JSON schema.", "- Always use the available additional information and context to enhance the response.")
	return ret
}

func (g *Generator) Generate() string {
	sections := map[string][]string{
		sectionIdentity: g.background,
		sectionSteps:    g.steps,
		sectionOutput:   g.outputInstructs,
	}
	var promptParts []string
	for _, title := range []string{sectionIdentity, sectionSteps, sectionOutput} {
		if content := sections[title]; len(content) > 0 {
			promptParts = append(promptParts, fmt.Sprintf("# %s", title))
			promptParts = append(promptParts, content...)
			promptParts = append(promptParts, "")
		}
	}
	promptParts = append(promptParts, g.RenderContext()...)
	return systemprompt.Join(promptParts)
}
