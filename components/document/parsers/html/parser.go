package html

import (
	"bytes"
	"context"
	"io"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/deepsearch/components/document"
)

var (
	noiseTags         = []string{"script", "style", "noscript", "iframe", "svg", "nav", "header", "footer", "aside", "form"}
	contentCandidates = []string{"main", "article", "#content, #main", ".content, .main", "body"}
)

// Parser is a parser which extracts the main content of a html page as markdown
type Parser struct {
	opts []converter.ConvertOptionFunc
}

var _ document.Parser = (*Parser)(nil)

func NewParser(opts ...converter.ConvertOptionFunc) *Parser {
	return &Parser{
		opts: opts,
	}
}

// Parse converts the main content of a html page into markdown, relative links are
// resolved against the source domain
func (p *Parser) Parse(ctx context.Context, src *document.Source, writer io.Writer) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src.Body))
	if err != nil {
		return err
	}
	mainContent := ExtractMainContent(doc)
	opts := p.opts
	if domain := src.Domain(); domain != "" {
		opts = append([]converter.ConvertOptionFunc{converter.WithDomain(domain)}, opts...)
	}
	markdown, err := htmltomarkdown.ConvertString(mainContent, opts...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(writer, document.CleanMarkdown(markdown))
	return err
}

// ExtractMainContent drops page chrome and returns the html of the first content candidate
func ExtractMainContent(doc *goquery.Document) string {
	for _, tag := range noiseTags {
		doc.Find(tag).Remove()
	}
	for _, selector := range contentCandidates {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if txt, err := sel.Html(); err == nil && txt != "" {
			return txt
		}
	}
	ret, _ := doc.Html()
	return ret
}
