// Package export renders a project budget as CSV, XLSX or PDF.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/internal/calc"
)

// Supported export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Report is everything an exporter needs: the project and its aggregation.
type Report struct {
	Project *budget.Project
	Summary calc.Summary
}

// NewReport aggregates p into a Report.
func NewReport(p *budget.Project) (Report, error) {
	summary, err := calc.Project(p)
	if err != nil {
		return Report{}, err
	}
	return Report{Project: p, Summary: summary}, nil
}

// Render produces the report in the requested format together with its
// content type.
func Render(format string, r Report) ([]byte, string, error) {
	switch format {
	case FormatCSV:
		data, err := CSV(r)
		return data, "text/csv; charset=utf-8", err
	case FormatXLSX:
		data, err := XLSX(r)
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	case FormatPDF:
		data, err := PDF(r)
		return data, "application/pdf", err
	default:
		return nil, "", fmt.Errorf("%w: unsupported export format %q", budget.ErrInvalid, format)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// FileName builds "<kind>-<name>-<id>.<ext>" with the project name reduced
// to ASCII letters, digits, '-' and '_'.
func FileName(kind string, p *budget.Project, ext string) string {
	name := unsafeChars.ReplaceAllString(strings.ReplaceAll(foldAccents(p.Name), " ", "_"), "")
	name = strings.Trim(name, "_-")
	if name == "" {
		name = "projeto"
	}
	return fmt.Sprintf("%s-%s-%d.%s", kind, name, p.ID, ext)
}

// foldAccents strips combining marks. Chains are stateful, so one is built per call.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
