package command

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/facetdex"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func printTitle(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf(format, args...)))
}

func printNoData(w io.Writer, msg string) {
	fmt.Fprintln(w, noDataStyle.Render(msg))
}

// printHits prints one line per hit with the values found at field.
func printHits(w io.Writer, env *facetdex.Envelope, field string) {
	printTitle(w, "%d results (%d total)", len(env.Hits), env.Total)
	for i, h := range env.Hits {
		fmt.Fprintf(w, "%3d. %s %s\n", i+1, fieldText(h.Source, field),
			metaStyle.Render(fmt.Sprintf("[%s, score %.3f]", h.ID, h.Score)))
	}
}

// printAggregations prints aggregations sorted by name.
func printAggregations(w io.Writer, aggs map[string]facetdex.Aggregation) {
	if len(aggs) == 0 {
		printNoData(w, "no aggregations")
		return
	}
	names := make([]string, 0, len(aggs))
	for name := range aggs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		agg := aggs[name]
		if agg.Value != nil {
			fmt.Fprintf(w, "%s %.0f\n", headerStyle.Render(name+":"), *agg.Value)
			continue
		}
		fmt.Fprintln(w, headerStyle.Render(name))
		for _, b := range agg.Buckets {
			fmt.Fprintf(w, "  %6d  %v\n", b.DocCount, b.Key)
		}
	}
}

func printDocument(w io.Writer, doc *facetdex.Document) error {
	if doc == nil {
		printNoData(w, "no document")
		return nil
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func fieldText(doc facetdex.Document, field string) string {
	values, ok := doc.Resolve(field)
	if !ok {
		return "-"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
