package diff

import (
	"fmt"
	"html/template"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// HTML returns a self-contained side-by-side rendering of the normalized
// difference between oldFP and newFP, with inline change highlighting.
// Missing content degrades to an error-describing HTML document.
func (e *Engine) HTML(oldFP, newFP string) string {
	oldLines, newLines, missing := e.loadBoth(oldFP, newFP)
	if missing != "" {
		return errorHTML(missing)
	}

	matcher := difflib.NewMatcher(oldLines, newLines)
	rows := buildRows(oldLines, newLines, matcher.GetOpCodes())

	var buf strings.Builder
	err := htmlTemplate.Execute(&buf, htmlPage{
		FromDesc: fmt.Sprintf("Previous version (%s)", oldFP),
		ToDesc:   fmt.Sprintf("Current version (%s)", newFP),
		Rows:     rows,
	})
	if err != nil {
		return errorHTML(err.Error())
	}
	return buf.String()
}

type htmlPage struct {
	FromDesc string
	ToDesc   string
	Rows     []htmlRow
}

type htmlRow struct {
	LeftNo     int // 0 renders as blank
	RightNo    int
	LeftText   string
	RightText  string
	LeftClass  string
	RightClass string
}

// buildRows pairs the two line sequences using difflib opcodes:
// 'e' equal, 'r' replace, 'd' delete (left only), 'i' insert (right only).
func buildRows(oldLines, newLines []string, ops []difflib.OpCode) []htmlRow {
	rows := make([]htmlRow, 0, len(oldLines)+len(newLines))
	for _, op := range ops {
		switch op.Tag {
		case 'e':
			for k := 0; op.I1+k < op.I2; k++ {
				rows = append(rows, htmlRow{
					LeftNo: op.I1 + k + 1, LeftText: oldLines[op.I1+k],
					RightNo: op.J1 + k + 1, RightText: newLines[op.J1+k],
				})
			}
		case 'r':
			left, right := op.I2-op.I1, op.J2-op.J1
			for k := 0; k < left || k < right; k++ {
				var row htmlRow
				if k < left {
					row.LeftNo = op.I1 + k + 1
					row.LeftText = oldLines[op.I1+k]
					row.LeftClass = "del"
				} else {
					row.LeftClass = "empty"
				}
				if k < right {
					row.RightNo = op.J1 + k + 1
					row.RightText = newLines[op.J1+k]
					row.RightClass = "ins"
				} else {
					row.RightClass = "empty"
				}
				rows = append(rows, row)
			}
		case 'd':
			for k := 0; op.I1+k < op.I2; k++ {
				rows = append(rows, htmlRow{
					LeftNo: op.I1 + k + 1, LeftText: oldLines[op.I1+k],
					LeftClass: "del", RightClass: "empty",
				})
			}
		case 'i':
			for k := 0; op.J1+k < op.J2; k++ {
				rows = append(rows, htmlRow{
					RightNo: op.J1 + k + 1, RightText: newLines[op.J1+k],
					RightClass: "ins", LeftClass: "empty",
				})
			}
		}
	}
	return rows
}

func errorHTML(reason string) string {
	var buf strings.Builder
	if err := errorTemplate.Execute(&buf, reason); err != nil {
		// Template over a plain string cannot realistically fail; keep a
		// hard fallback so the artifact contract holds regardless.
		return "<html><body><h1>Error generating diff</h1></body></html>"
	}
	return buf.String()
}

var htmlTemplate = template.Must(template.New("sidebyside").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Diff</title>
<style>
body { font-family: monospace; margin: 0; }
table { border-collapse: collapse; width: 100%; table-layout: fixed; }
th { background: #f0f0f0; text-align: left; padding: 4px 8px; }
td { vertical-align: top; padding: 1px 8px; white-space: pre-wrap; word-break: break-all; }
td.num { width: 3.5em; color: #999; text-align: right; user-select: none; }
td.del { background: #ffecec; }
td.ins { background: #eaffea; }
td.empty { background: #f7f7f7; }
</style>
</head>
<body>
<table>
<tr><th colspan="2">{{.FromDesc}}</th><th colspan="2">{{.ToDesc}}</th></tr>
{{range .Rows}}<tr><td class="num">{{if .LeftNo}}{{.LeftNo}}{{end}}</td><td class="{{.LeftClass}}">{{.LeftText}}</td><td class="num">{{if .RightNo}}{{.RightNo}}{{end}}</td><td class="{{.RightClass}}">{{.RightText}}</td></tr>
{{end}}</table>
</body>
</html>
`))

var errorTemplate = template.Must(template.New("differror").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Diff unavailable</title></head>
<body><h1>Error generating diff</h1><p>{{.}}</p></body>
</html>
`))
