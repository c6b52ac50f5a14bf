package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// ErrInvalidSMTPConfig is returned by NewSMTPNotifier for incomplete settings.
var ErrInvalidSMTPConfig = errors.New("notify: invalid smtp config")

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD,unset"`
	From     string `env:"FROM"`

	// Timeout bounds one delivery, dial through QUIT, on top of the
	// caller's deadline.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// ConfirmationURL is the page the confirmation link points at. The
	// email and token are appended as query parameters.
	ConfirmationURL string `env:"CONFIRMATION_URL"`
}

// SendFunc matches smtp.SendMail with a context that bounds the exchange.
type SendFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends HTML mail through an SMTP relay.
type SMTPNotifier struct {
	cfg  SMTPConfig
	base *url.URL
	send SendFunc
}

// NewSMTPNotifier validates cfg. send may be nil, in which case mail goes
// out through SendMail.
func NewSMTPNotifier(cfg SMTPConfig, send SendFunc) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.Port <= 0 || cfg.From == "" {
		return nil, fmt.Errorf("%w: host, port and from are required", ErrInvalidSMTPConfig)
	}
	base, err := url.Parse(cfg.ConfirmationURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: confirmation url must be absolute", ErrInvalidSMTPConfig)
	}
	if send == nil {
		send = SendMail
	}
	return &SMTPNotifier{cfg: cfg, base: base, send: send}, nil
}

// ConfirmationLink builds the link mailed to email for token.
func (n *SMTPNotifier) ConfirmationLink(email, token string) string {
	u := *n.base
	q := u.Query()
	q.Set("email", email)
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (n *SMTPNotifier) SendEmailConfirmation(ctx context.Context, email, token string) error {
	return n.deliver(ctx, email, "Confirm your email address", "confirm_email.html", map[string]any{
		"Link": n.ConfirmationLink(email, token),
	})
}

func (n *SMTPNotifier) SendTwoFactorCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	return n.deliver(ctx, email, "Your sign-in code", "two_factor_code.html", map[string]any{
		"Code":      code,
		"ExpiresAt": expiresAt.UTC().Format(time.RFC1123),
	})
}

func (n *SMTPNotifier) deliver(ctx context.Context, to, subject, tmpl string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("notify: render %s: %w", tmpl, err)
	}

	msg := buildMessage(n.cfg.From, to, subject, body.Bytes())
	addr := net.JoinHostPort(n.cfg.Host, fmt.Sprint(n.cfg.Port))

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := n.send(ctx, addr, auth, n.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}

	slogx.FromContext(ctx).Debug("mail sent", slog.String("template", tmpl), slog.String("email", to))
	return nil
}

// SendMail is smtp.SendMail with the connection tied to ctx. The connection
// is closed when ctx ends, which unblocks any pending read or write.
func SendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) (err error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer func() {
		if err != nil && ctx.Err() != nil {
			err = ctx.Err()
		}
	}()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		_ = conn.Close()
		return err
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

func buildMessage(from, to, subject string, body []byte) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", from)
	header("To", to)
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="utf-8"`)
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(string(body), "\n", "\r\n"))
	return b.Bytes()
}
