package email

import (
	"fmt"
	"html/template"
	"strings"
	texttpl "text/template"

	"github.com/dropDatabas3/learn2grow/internal/domain/repository"
)

// ErrUnknownKind indica un kind de notificación fuera del conjunto soportado.
// Es un error de programación: el caller nunca debería llegar acá con un
// kind válido.
var ErrUnknownKind = fmt.Errorf("unknown notification kind")

// Vars son los parámetros de renderizado de un email.
// Name y Email identifican al destinatario; el resto son campos
// específicos por kind y pueden quedar vacíos.
type Vars struct {
	Name     string
	Email    string
	SiteName string
	SiteURL  string
	// Notes acompaña rejection (motivo del rechazo) y follow_up.
	Notes string
	// RequestID acompaña admin_notification para linkear al panel.
	RequestID string
}

// Rendered es el resultado de renderizar un kind: listo para armar el Message.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer renderiza emails por kind. Puro: sin side effects ni I/O.
// Los templates se parsean una sola vez en NewRenderer.
type Renderer struct {
	subjects map[repository.EmailKind]*texttpl.Template
	htmls    map[repository.EmailKind]*template.Template
	texts    map[repository.EmailKind]*texttpl.Template
	siteName string
	siteURL  string
}

// NewRenderer parsea los templates built-in. siteName y siteURL se inyectan
// en cada render como defaults (Vars puede sobreescribirlos).
func NewRenderer(siteName, siteURL string) (*Renderer, error) {
	r := &Renderer{
		subjects: make(map[repository.EmailKind]*texttpl.Template),
		htmls:    make(map[repository.EmailKind]*template.Template),
		texts:    make(map[repository.EmailKind]*texttpl.Template),
		siteName: siteName,
		siteURL:  siteURL,
	}

	for kind, src := range builtinTemplates {
		st, err := texttpl.New(string(kind) + "_subject").Parse(src.subject)
		if err != nil {
			return nil, fmt.Errorf("parse %s subject: %w", kind, err)
		}
		ht, err := template.New(string(kind) + "_html").Parse(src.html)
		if err != nil {
			return nil, fmt.Errorf("parse %s html: %w", kind, err)
		}
		tt, err := texttpl.New(string(kind) + "_text").Parse(src.text)
		if err != nil {
			return nil, fmt.Errorf("parse %s text: %w", kind, err)
		}
		r.subjects[kind] = st
		r.htmls[kind] = ht
		r.texts[kind] = tt
	}
	return r, nil
}

// Render produce subject + cuerpos para el kind dado.
// Total sobre los seis kinds conocidos; kind desconocido retorna ErrUnknownKind.
func (r *Renderer) Render(kind repository.EmailKind, vars Vars) (*Rendered, error) {
	st, ok := r.subjects[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if vars.SiteName == "" {
		vars.SiteName = r.siteName
	}
	if vars.SiteURL == "" {
		vars.SiteURL = r.siteURL
	}
	if vars.Name == "" {
		vars.Name = vars.Email
	}

	var subject, htmlBody, textBody strings.Builder
	if err := st.Execute(&subject, vars); err != nil {
		return nil, fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := r.htmls[kind].Execute(&htmlBody, vars); err != nil {
		return nil, fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := r.texts[kind].Execute(&textBody, vars); err != nil {
		return nil, fmt.Errorf("render %s text: %w", kind, err)
	}

	return &Rendered{
		Subject: strings.TrimSpace(subject.String()),
		HTML:    htmlBody.String(),
		Text:    textBody.String(),
	}, nil
}

type templateSource struct {
	subject string
	html    string
	text    string
}

var builtinTemplates = map[repository.EmailKind]templateSource{
	repository.KindAdminNotification: {
		subject: `[{{.SiteName}}] New recipient request: {{.Name}}`,
		html: `<html><body>
<h2>New recipient request</h2>
<p><strong>{{.Name}}</strong> ({{.Email}}) has requested a recipient account.</p>
{{if .RequestID}}<p>Request ID: <code>{{.RequestID}}</code></p>{{end}}
<p><a href="{{.SiteURL}}/admin/requests">Review pending requests</a></p>
</body></html>`,
		text: `New recipient request from {{.Name}} ({{.Email}}).
{{if .RequestID}}Request ID: {{.RequestID}}
{{end}}Review it at {{.SiteURL}}/admin/requests
`,
	},
	repository.KindConfirmation: {
		subject: `We received your request — {{.SiteName}}`,
		html: `<html><body>
<p>Hi {{.Name}},</p>
<p>Thanks for reaching out to {{.SiteName}}. We received your recipient
request and our team will review it shortly.</p>
<p>You will get another email once a decision is made. No action is needed
from you right now.</p>
<p>— The {{.SiteName}} team</p>
</body></html>`,
		text: `Hi {{.Name}},

Thanks for reaching out to {{.SiteName}}. We received your recipient
request and our team will review it shortly.

You will get another email once a decision is made.

— The {{.SiteName}} team
`,
	},
	repository.KindVerification: {
		subject: `{{.SiteName}}: we need a bit more information`,
		html: `<html><body>
<p>Hi {{.Name}},</p>
<p>We reviewed your recipient request and need some additional information
before we can approve it. Please reply to this email with any documents or
details that support your request.</p>
{{if .Notes}}<p><em>Reviewer notes:</em> {{.Notes}}</p>{{end}}
<p>— The {{.SiteName}} team</p>
</body></html>`,
		text: `Hi {{.Name}},

We reviewed your recipient request and need some additional information
before we can approve it. Please reply to this email with any documents
or details that support your request.
{{if .Notes}}
Reviewer notes: {{.Notes}}
{{end}}
— The {{.SiteName}} team
`,
	},
	repository.KindApproval: {
		subject: `Your {{.SiteName}} request was approved`,
		html: `<html><body>
<p>Hi {{.Name}},</p>
<p>Good news: your recipient request was <strong>approved</strong>. You can
now sign in and create posts to share your story with sponsors.</p>
<p><a href="{{.SiteURL}}/login">Sign in to {{.SiteName}}</a></p>
<p>— The {{.SiteName}} team</p>
</body></html>`,
		text: `Hi {{.Name}},

Good news: your recipient request was approved. You can now sign in at
{{.SiteURL}}/login and create posts to share your story with sponsors.

— The {{.SiteName}} team
`,
	},
	repository.KindRejection: {
		subject: `Update on your {{.SiteName}} request`,
		html: `<html><body>
<p>Hi {{.Name}},</p>
<p>After reviewing your recipient request we are unable to approve it at
this time.</p>
{{if .Notes}}<p><em>Reason:</em> {{.Notes}}</p>{{end}}
<p>If you believe this was a mistake, or your situation changes, you are
welcome to reply to this email.</p>
<p>— The {{.SiteName}} team</p>
</body></html>`,
		text: `Hi {{.Name}},

After reviewing your recipient request we are unable to approve it at
this time.
{{if .Notes}}
Reason: {{.Notes}}
{{end}}
If you believe this was a mistake, or your situation changes, you are
welcome to reply to this email.

— The {{.SiteName}} team
`,
	},
	repository.KindFollowUp: {
		subject: `Still waiting to hear from you — {{.SiteName}}`,
		html: `<html><body>
<p>Hi {{.Name}},</p>
<p>A while ago we asked for additional information about your recipient
request and have not heard back. If you are still interested, please reply
to this email — otherwise the request will remain closed.</p>
{{if .Notes}}<p><em>Reviewer notes:</em> {{.Notes}}</p>{{end}}
<p>— The {{.SiteName}} team</p>
</body></html>`,
		text: `Hi {{.Name}},

A while ago we asked for additional information about your recipient
request and have not heard back. If you are still interested, please
reply to this email.
{{if .Notes}}
Reviewer notes: {{.Notes}}
{{end}}
— The {{.SiteName}} team
`,
	},
}
