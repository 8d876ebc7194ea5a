// Package parsers dispatches fetched documents to a content specific parser.
package parsers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/bububa/deepsearch/components/document"
	"github.com/bububa/deepsearch/components/document/parsers/docx"
	"github.com/bububa/deepsearch/components/document/parsers/html"
	"github.com/bububa/deepsearch/components/document/parsers/pdf"
	"github.com/bububa/deepsearch/components/document/parsers/xlsx"
)

const (
	MIMEHTML  = "text/html"
	MIMEXHTML = "application/xhtml+xml"
	MIMEText  = "text/plain"
	MIMEPDF   = "application/pdf"
	MIMEDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEXLSX  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Registry maps content types to parsers
// threadsafe
type Registry struct {
	parsers map[string]document.Parser
	mtx     sync.RWMutex
}

// NewRegistry returns a Registry with html, text, pdf, docx and xlsx parsers registered
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]document.Parser)}
	htmlParser := html.NewParser()
	r.Register(MIMEHTML, htmlParser)
	r.Register(MIMEXHTML, htmlParser)
	r.Register(MIMEText, new(document.TextParser))
	r.Register(MIMEPDF, pdf.NewParser())
	r.Register(MIMEDOCX, new(docx.Parser))
	r.Register(MIMEXLSX, xlsx.NewParser(xlsx.WithMaxRows(500)))
	return r
}

// Register sets the parser of a content type, replacing any existing one
func (r *Registry) Register(contentType string, parser document.Parser) {
	r.mtx.Lock()
	r.parsers[contentType] = parser
	r.mtx.Unlock()
}

func (r *Registry) get(contentType string) (document.Parser, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	p, ok := r.parsers[contentType]
	return p, ok
}

// Lookup picks a parser for the source. The sniffed type and its parents are tried
// first, then the declared type. Returns the matched content type.
func (r *Registry) Lookup(src *document.Source) (document.Parser, string, error) {
	for m := mimetype.Detect(src.Body); m != nil; m = m.Parent() {
		if contentType, _, err := mime.ParseMediaType(m.String()); err == nil {
			if p, ok := r.get(contentType); ok {
				return p, contentType, nil
			}
		}
	}
	if src.MIME != "" {
		if contentType, _, err := mime.ParseMediaType(src.MIME); err == nil {
			if p, ok := r.get(contentType); ok {
				return p, contentType, nil
			}
		}
	}
	return nil, "", fmt.Errorf("%w: %s", document.ErrUnsupported, src.MIME)
}

// Parse looks up a parser for the source and runs it
func (r *Registry) Parse(ctx context.Context, src *document.Source, w io.Writer) error {
	p, _, err := r.Lookup(src)
	if err != nil {
		return err
	}
	return p.Parse(ctx, src, w)
}
