package console

import (
	"bytes"
	"html/template"

	"github.com/wichananm65/recommendation-console/internal/recommendation"
)

var resultsHeader = []string{"Product ID", "Recommended Product ID", "Relationship", "Likes", "Dislikes"}

// ResultsTable holds the rows of a search. Rows[0] is always the header.
type ResultsTable struct {
	Rows [][]string `json:"rows"`
}

func NewResultsTable(records []recommendation.Record) *ResultsTable {
	t := &ResultsTable{Rows: make([][]string, 0, len(records)+1)}
	header := make([]string, len(resultsHeader))
	copy(header, resultsHeader)
	t.Rows = append(t.Rows, header)
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.ProductID.String(),
			r.RecommendationProductID.String(),
			string(r.Relationship),
			count(r.Likes),
			count(r.Dislikes),
		})
	}
	return t
}

// Matches is the number of data rows.
func (t *ResultsTable) Matches() int {
	if t == nil || len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows) - 1
}

var resultsTemplate = template.Must(template.New("results").Parse(
	`<table class="table-striped" cellpadding="10">` +
		`{{range $i, $row := .Rows}}<tr>` +
		`{{range $row}}{{if eq $i 0}}<th>{{.}}</th>{{else}}<td>{{.}}</td>{{end}}{{end}}` +
		`</tr>{{end}}</table>`))

// HTML renders the table with every cell escaped.
func (t *ResultsTable) HTML() (template.HTML, error) {
	if t == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := resultsTemplate.Execute(&buf, t); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
