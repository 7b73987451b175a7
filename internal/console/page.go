package console

import (
	"bytes"
	"html/template"

	"github.com/wichananm65/recommendation-console/internal/recommendation"
)

type pageData struct {
	ViewModel
	Table         template.HTML
	Relationships []recommendation.Relationship
	Actions       []Action
	SignIn        bool
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Recommendations Console</title>
</head>
<body>
<h1>Recommendations Console</h1>
<div id="flash_message">{{.Flash}}</div>
{{if .SignIn}}
<form method="post" action="/console/session">
  <label for="operator_key">Operator key</label>
  <input type="password" id="operator_key" name="operator_key">
  <button type="submit" id="signin-btn">Sign in</button>
</form>
{{end}}
<form method="post" action="/console/retrieve">
  <label for="product_id">Product ID</label>
  <input type="text" id="product_id" name="product_id" value="{{.Form.ProductID}}">
  <label for="recommendation_product_id">Recommended Product ID</label>
  <input type="text" id="recommendation_product_id" name="recommendation_product_id" value="{{.Form.RecommendationProductID}}">
  <label for="relationship">Relationship</label>
  <select id="relationship" name="relationship">
    <option value=""></option>
    {{$current := .Form.Relationship}}{{range .Relationships}}<option value="{{.}}"{{if eq (printf "%s" .) $current}} selected{{end}}>{{.}}</option>{{end}}
  </select>
  <label for="likes">Likes</label>
  <input type="text" id="likes" name="likes" value="{{.Form.Likes}}" readonly>
  <label for="dislikes">Dislikes</label>
  <input type="text" id="dislikes" name="dislikes" value="{{.Form.Dislikes}}" readonly>
  {{range .Actions}}<button type="submit" id="{{.}}-btn" formaction="/console/{{.}}">{{.}}</button>
  {{end}}
</form>
<div id="search_results">{{.Table}}</div>
</body>
</html>
`))

func renderPage(vm ViewModel, signIn bool) ([]byte, error) {
	table, err := vm.Results.HTML()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, pageData{
		ViewModel:     vm,
		Table:         table,
		Relationships: recommendation.Relationships(),
		Actions:       Actions(),
		SignIn:        signIn,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
