package sender

import (
	"bytes"
	"fmt"
	"text/template"

	"sandwich-shop-service/config"

	gopkgmail "gopkg.in/gomail.v2"
)

type EmailNotification struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Plain-text bodies only; the storefront does not ship branded HTML mail.
var templates = map[string]*template.Template{
	"order_confirmation": template.Must(template.New("order_confirmation").Parse(
		`Hi {{.customer_name}},

Your order {{.order_number}} is confirmed. Pickup code: {{.public_code}}.
Pickup time: {{.pickup_time}}.

{{range .items}}  {{.quantity}}x {{.product_name}}
{{end}}
See you at the drop!
`)),
	"admin_alert": template.Must(template.New("admin_alert").Parse(
		`Severity: {{.severity}}
Reason: {{.reason}}
{{if .order_id}}Order: {{.order_id}}
{{end}}{{if .payment_intent_id}}Payment intent: {{.payment_intent_id}}
{{end}}{{if .customer_email}}Customer: {{.customer_email}}
{{end}}At: {{.occurred_at}}
`)),
}

// KnownTemplate reports whether a template name can be rendered. The
// consumer checks this at decode time so a bad message is rejected before
// an SMTP dial is attempted.
func KnownTemplate(name string) bool {
	_, ok := templates[name]
	return ok
}

type EmailSender struct {
	cfg *config.Config
}

func NewEmailSender(cfg *config.Config) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) SendEmail(n EmailNotification) error {
	tmpl, ok := templates[n.Template]
	if !ok {
		return fmt.Errorf("unknown email template %q", n.Template)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, n.Data); err != nil {
		return fmt.Errorf("render %s: %w", n.Template, err)
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.cfg.SMTP.From)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", buf.String())

	d := gopkgmail.NewDialer(s.cfg.SMTP.Host, s.cfg.SMTP.Port, s.cfg.SMTP.User, s.cfg.SMTP.Password)
	d.SSL = true
	return d.DialAndSend(m)
}
