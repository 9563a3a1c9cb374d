package view

import (
	"fmt"
	"html/template"
	"io"
)

const layout = `
{{- define "attrs" -}}
{{if .ID}} id="{{.ID}}"{{end}}{{if .Class}} class="{{.Class}}"{{end}}{{range $k, $v := .Attrs}} {{$k}}="{{$v}}"{{end}}{{if .Disabled}} disabled{{end}}{{if .Autofocus}} autofocus{{end}}
{{- end -}}
{{- define "children" -}}{{range .Children}}{{template "node" .}}{{end}}{{- end -}}
{{- define "node" -}}
{{- if eq .Kind "page" -}}
<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>{{.Text}}</title></head>
<body>{{template "children" .}}</body></html>
{{- else if eq .Kind "section" -}}<section{{template "attrs" .}}>{{template "children" .}}</section>
{{- else if eq .Kind "group" -}}<div{{template "attrs" .}}>{{template "children" .}}</div>
{{- else if eq .Kind "heading" -}}<h2{{template "attrs" .}}>{{.Text}}</h2>
{{- else if eq .Kind "text" -}}<p{{template "attrs" .}}>{{.Text}}</p>
{{- else if eq .Kind "message" -}}<div role="alert"{{template "attrs" .}}>{{.Text}}</div>
{{- else if eq .Kind "form" -}}<form method="post" action="{{.Href}}"{{template "attrs" .}}>{{template "children" .}}</form>
{{- else if eq .Kind "label" -}}<label{{template "attrs" .}}>{{.Text}}</label>
{{- else if eq .Kind "input" -}}<input{{if .Type}} type="{{.Type}}"{{end}} name="{{.Name}}" value="{{.Value}}"{{template "attrs" .}}>
{{- else if eq .Kind "select" -}}<select name="{{.Name}}"{{template "attrs" .}}>{{template "children" .}}</select>
{{- else if eq .Kind "option" -}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}{{if .Disabled}} disabled{{end}}>{{.Text}}</option>
{{- else if eq .Kind "button" -}}<button type="submit"{{if .Href}} formaction="{{.Href}}"{{end}}{{template "attrs" .}}>{{.Text}}</button>
{{- else if eq .Kind "link" -}}<a href="{{.Href}}"{{template "attrs" .}}>{{.Text}}</a>
{{- else if eq .Kind "card" -}}<article{{template "attrs" .}}>{{template "children" .}}</article>
{{- else if eq .Kind "badge" -}}<span{{template "attrs" .}}>{{.Text}}</span>
{{- else if eq .Kind "stat" -}}<div{{template "attrs" .}}><span class="stat-value">{{.Value}}</span><span class="stat-label">{{.Text}}</span></div>
{{- else if eq .Kind "dialog" -}}<div role="dialog" aria-modal="true"{{template "attrs" .}}>{{template "children" .}}</div>
{{- end -}}
{{- end -}}
{{- template "node" . -}}`

var pageTemplate = template.Must(template.New("view").Parse(layout))

// Render writes n as HTML.
func Render(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	if err := pageTemplate.Execute(w, n); err != nil {
		return fmt.Errorf("view: render %s: %w", n.Kind, err)
	}
	return nil
}
