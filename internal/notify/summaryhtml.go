package notify

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// RenderSummaryHTML turns the detailed_analysis section of a change
// analysis into the self-contained summary.html artifact attached to change
// notifications. Keys render in sorted order for stable output.
func RenderSummaryHTML(url string, detailed map[string]any) []byte {
	type item struct {
		Title string
		Body  string
	}
	items := make([]item, 0, len(detailed))
	keys := make([]string, 0, len(detailed))
	for k := range detailed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		items = append(items, item{
			Title: titleize(k),
			Body:  fmt.Sprint(detailed[k]),
		})
	}

	var buf strings.Builder
	err := summaryTemplate.Execute(&buf, struct {
		URL   string
		Items []item
	}{URL: url, Items: items})
	if err != nil {
		return []byte("<html><body><h1>Change Summary</h1><p>rendering failed</p></body></html>")
	}
	return []byte(buf.String())
}

// titleize converts snake_case analysis keys into headings.
func titleize(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var summaryTemplate = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Change Summary</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; padding: 0 1em; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: 0.3em; }
h2 { color: #444; margin-bottom: 0.2em; }
p { margin-top: 0.2em; white-space: pre-wrap; }
code { background: #f4f4f4; padding: 1px 4px; }
</style>
</head>
<body>
<h1>Change Summary</h1>
<p><code>{{.URL}}</code></p>
{{range .Items}}<h2>{{.Title}}</h2>
<p>{{.Body}}</p>
{{end}}{{if not .Items}}<p>No detailed analysis was provided.</p>{{end}}
</body>
</html>
`))
