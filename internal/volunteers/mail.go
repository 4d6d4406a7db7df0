package volunteers

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/queue"
)

var ackTmpl = template.Must(template.New("ack").Parse(
	`<p>Dear {{.FullName}},</p>
<p>Thank you for applying to volunteer with EJO Heza Sport Training Organization. We'll review your application and contact you soon.</p>
<p>EJO Heza</p>`))

var noticeTmpl = template.Must(template.New("notice").Funcs(template.FuncMap{
	"join": func(s []string) string { return strings.Join(s, ", ") },
}).Parse(
	`<p>New volunteer application from <strong>{{.FullName}}</strong> ({{.Email}}, {{.Phone}}).</p>
<p>Availability: {{.Availability}}</p>
{{if .Skills}}<p>Skills: {{join .Skills}}</p>{{end}}
<p>Motivation:</p><p>{{.Motivation}}</p>`))

func render(t *template.Template, v *models.Volunteer) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return ""
	}
	return buf.String()
}

func applicationEmails(v *models.Volunteer, orgInbox string) []queue.EmailPayload {
	out := []queue.EmailPayload{{
		Kind:    queue.EmailVolunteerAck,
		To:      []string{v.Email},
		Subject: "We received your volunteer application",
		HTML:    render(ackTmpl, v),
	}}
	if orgInbox != "" {
		out = append(out, queue.EmailPayload{
			Kind:    queue.EmailVolunteerNotice,
			To:      []string{orgInbox},
			ReplyTo: v.Email,
			Subject: "New volunteer application: " + v.FullName,
			HTML:    render(noticeTmpl, v),
		})
	}
	return out
}
