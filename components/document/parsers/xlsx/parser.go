package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bububa/deepsearch/components/document"
)

// Parser renders every sheet of a workbook as a markdown table
type Parser struct {
	password string
	// maxRows caps rows per sheet, 0 means unlimited
	maxRows int
}

var _ document.Parser = (*Parser)(nil)

type Option func(*Parser)

func WithPassword(passwd string) Option {
	return func(p *Parser) {
		p.password = passwd
	}
}

func WithMaxRows(n int) Option {
	return func(p *Parser) {
		p.maxRows = n
	}
}

func NewParser(opts ...Option) *Parser {
	ret := new(Parser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (p *Parser) Parse(ctx context.Context, src *document.Source, writer io.Writer) error {
	opts := make([]excelize.Options, 0, 1)
	if p.password != "" {
		opts = append(opts, excelize.Options{Password: p.password})
	}
	doc, err := excelize.OpenReader(bytes.NewReader(src.Body), opts...)
	if err != nil {
		return err
	}
	defer doc.Close()
	for _, sheet := range doc.GetSheetList() {
		if err := p.writeSheet(ctx, doc, sheet, writer); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) writeSheet(ctx context.Context, doc *excelize.File, sheet string, writer io.Writer) error {
	rows, err := doc.Rows(sheet)
	if err != nil {
		return err
	}
	defer rows.Close()
	var totalRows int
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.maxRows > 0 && totalRows >= p.maxRows {
			break
		}
		row, err := rows.Columns()
		if err != nil {
			return err
		}
		if totalRows == 0 {
			fmt.Fprintf(writer, "## %s\n\n", sheet)
		}
		cells := make([]string, len(row))
		for idx, cellValue := range row {
			cells[idx] = strings.TrimSpace(document.EscapeMarkdown(document.StripUnprintable(cellValue)))
		}
		fmt.Fprintf(writer, "| %s |\n", strings.Join(cells, " | "))
		if totalRows == 0 {
			fmt.Fprintf(writer, "|%s\n", strings.Repeat(" --- |", len(cells)))
		}
		totalRows++
	}
	if totalRows > 0 {
		writer.Write([]byte{'\n'})
	}
	return rows.Error()
}
