package document

import (
	"context"
	"io"
	"unicode/utf8"
)

// TextParser writes plain text documents as is, dropping unprintable characters
type TextParser struct{}

var _ Parser = (*TextParser)(nil)

func (p *TextParser) Parse(ctx context.Context, src *Source, w io.Writer) error {
	if !utf8.Valid(src.Body) {
		return ErrUnsupported
	}
	_, err := io.WriteString(w, CleanMarkdown(StripUnprintable(string(src.Body))))
	return err
}
