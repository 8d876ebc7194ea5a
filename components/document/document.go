package document

import (
	"context"
	"errors"
	"io"
	"net/url"
)

// ErrUnsupported is returned when no parser handles a content type
var ErrUnsupported = errors.New("unsupported document type")

// Source is a fetched document waiting to be parsed
type Source struct {
	// URL where the document was fetched from, used to resolve relative links
	URL string
	// MIME is the declared content type, e.g. the Content-Type response header
	MIME string
	// Body is the raw document
	Body []byte
}

// Domain returns scheme://host of the source url, or an empty string
func (s *Source) Domain() string {
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Parser extracts text from a Source and writes it to an io.Writer
type Parser interface {
	Parse(context.Context, *Source, io.Writer) error
}

// ParserFunc adapts a function to Parser
type ParserFunc func(context.Context, *Source, io.Writer) error

func (f ParserFunc) Parse(ctx context.Context, src *Source, w io.Writer) error {
	return f(ctx, src, w)
}
