package notify

import (
	"bytes"
	"html/template"
)

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`
{{define "admin_registration"}}<h2>New team registered: {{.Team.TeamName}}</h2>
<p>Week of {{.Week}}. Teams this week: {{.Count}}/{{.Capacity}}.</p>
<table>
{{range $i, $p := .Team.Players}}<tr><td>Player {{inc $i}}</td><td>{{$p.ID}}</td><td>level {{$p.Level}}</td></tr>
{{end}}</table>
<p>Email: {{.Team.ContactEmail}}<br>Phone: {{.Team.ContactPhone}}<br>UTR: {{.Team.UTRNumber}}</p>
{{if .Team.ScreenshotURL}}<p><a href="{{.Team.ScreenshotURL}}">Payment screenshot</a></p>
{{else}}<p><strong>The screenshot upload failed. Verify this payment manually (UTR {{.Team.UTRNumber}}).</strong></p>
{{end}}{{end}}

{{define "user_confirmation"}}<h2>You're in, {{.Team.TeamName}}!</h2>
<p>Your registration for the tournament week of {{.Week}} is confirmed.</p>
<ul>
{{range $i, $p := .Team.Players}}<li>Player {{inc $i}}: {{$p.ID}} (level {{$p.Level}})</li>
{{end}}</ul>
<p>Payment reference: {{.Team.UTRNumber}}</p>
<p>See you on the field.</p>{{end}}

{{define "winner"}}<h2>Congratulations, {{.Team.TeamName}}!</h2>
<p>You finished <strong>{{.Rank}}</strong> in the tournament week of {{.Week}}.</p>
<p>Thanks for playing. The organisers will reach out about prizes.</p>{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
