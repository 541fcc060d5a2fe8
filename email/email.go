package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Mailer struct {
	from     string
	password string
	host     string
	port     int
	html     *template.Template
	text     *texttemplate.Template
}

func New(address string, password string, host string, port int) *Mailer {
	return &Mailer{
		from:     address,
		password: password,
		host:     host,
		port:     port,
		html:     template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl")),
		text:     texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl")),
	}
}

// ApplicationData feeds both the applicant confirmation and the
// employer notification templates.
type ApplicationData struct {
	ApplicantEmail string
	EmployerEmail  string
	JobTitle       string
	CompanyName    string
	AppliedDate    string
	CoverLetter    string
}

func (m *Mailer) SendPasswordReset(to string, link string) error {
	data := struct{ Link string }{link}
	return m.send(to, "Password Reset Request", "password_reset", data)
}

func (m *Mailer) SendApplicationConfirmation(data ApplicationData) error {
	subject := fmt.Sprintf("Application Submitted: %s", data.JobTitle)
	return m.send(data.ApplicantEmail, subject, "application_confirmation", data)
}

func (m *Mailer) SendEmployerNotification(data ApplicationData) error {
	subject := fmt.Sprintf("New Application Received: %s", data.JobTitle)
	return m.send(data.EmployerEmail, subject, "employer_notification", data)
}

// send builds a multipart/alternative message with a text and an
// html rendering of the named template pair.
func (m *Mailer) send(to string, subject string, name string, data interface{}) error {
	var textBody bytes.Buffer
	if err := m.text.ExecuteTemplate(&textBody, name+".txt.tmpl", data); err != nil {
		return fmt.Errorf("rendering text body of %s: %w", name, err)
	}

	var htmlBody bytes.Buffer
	if err := m.html.ExecuteTemplate(&htmlBody, name+".html.tmpl", data); err != nil {
		return fmt.Errorf("rendering html body of %s: %w", name, err)
	}

	const boundary = "mail-boundary-77f9"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	parts := []struct {
		contentType string
		body        *bytes.Buffer
	}{
		{"text/plain", &textBody},
		{"text/html", &htmlBody},
	}

	for _, part := range parts {
		contentType, body := part.contentType, part.body
		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		fmt.Fprintf(&msg, "Content-Type: %s; charset=\"utf-8\"\r\n", contentType)
		fmt.Fprintf(&msg, "Content-Transfer-Encoding: quoted-printable\r\n")
		fmt.Fprintf(&msg, "\r\n")

		qp := quotedprintable.NewWriter(&msg)
		if _, err := qp.Write(body.Bytes()); err != nil {
			return fmt.Errorf("encoding %s body: %w", contentType, err)
		}
		if err := qp.Close(); err != nil {
			return fmt.Errorf("closing %s body: %w", contentType, err)
		}
		fmt.Fprintf(&msg, "\r\n")
	}
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if m.password != "" {
		auth = smtp.PlainAuth("", m.from, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("sending mail to %s: %w", maskEmail(to), err)
	}

	return nil
}

func maskEmail(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at <= 1 {
		return "***"
	}
	return addr[:1] + "***" + addr[at:]
}
