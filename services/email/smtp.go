package emailsvc

import (
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/datastorylab/showtell/core"
)

// smtpService delivers mail over an authenticated, implicit-TLS SMTP session
// (the classic :465 setup, e.g. Gmail with an app password).
type smtpService struct {
	host     string
	port     int
	username string
	password string
	from     mail.Address
}

var _ core.EmailService = (*smtpService)(nil)

func NewSMTPService(conf *core.Config) *smtpService {
	return &smtpService{
		host:     conf.Mail.SMTPHost,
		port:     conf.Mail.SMTPPort,
		username: conf.Mail.Address,
		password: conf.Mail.Password,
		from:     conf.DefaultFromEmail(),
	}
}

func (svc *smtpService) SendMessage(msg *core.EmailMessage) error {
	if err := msg.Render(); err != nil {
		return errors.Wrap(err, "rendering email")
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}
	return svc.send(*msg)
}

func (svc *smtpService) send(msg core.EmailMessage) error {
	addr := svc.host + ":" + strconv.Itoa(svc.port)

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: svc.host})
	if err != nil {
		return errors.Wrap(err, "dialing "+addr)
	}

	client, err := smtp.NewClient(conn, svc.host)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "starting SMTP session")
	}

	// QUIT ends the session on success; Close only tears down failed ones.
	if err = svc.transmit(client, msg); err != nil {
		_ = client.Close()
		return err
	}
	return client.Quit()
}

func (svc *smtpService) transmit(client *smtp.Client, msg core.EmailMessage) error {
	if err := client.Auth(smtp.PlainAuth("", svc.username, svc.password, svc.host)); err != nil {
		return errors.Wrap(err, "authenticating")
	}
	if err := client.Mail(svc.from.Address); err != nil {
		return errors.Wrap(err, "setting sender")
	}
	for _, rcpt := range svc.recipients(msg) {
		if err := client.Rcpt(rcpt); err != nil {
			return errors.Wrap(err, "adding recipient "+rcpt)
		}
	}

	w, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "opening message body")
	}
	if _, err = w.Write(svc.buildMessage(msg)); err != nil {
		return errors.Wrap(err, "writing message body")
	}
	return errors.Wrap(w.Close(), "closing message body")
}

func (svc *smtpService) recipients(msg core.EmailMessage) []string {
	rcpts := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	for _, groups := range [][]mail.Address{msg.To, msg.Cc, msg.Bcc} {
		for _, a := range groups {
			rcpts = append(rcpts, a.Address)
		}
	}
	return rcpts
}

func (svc *smtpService) buildMessage(msg core.EmailMessage) []byte {
	body := new(strings.Builder)

	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.from.String())
	_, _ = fmt.Fprintf(body, "Reply-To: %s\r\n", svc.from.Address)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddressList(msg.To))
	if len(msg.Cc) > 0 {
		_, _ = fmt.Fprintf(body, "CC: %s\r\n", joinAddressList(msg.Cc))
	}
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprint(body, "Content-Type: text/plain; charset=\"utf-8\"\r\n")
	_, _ = fmt.Fprint(body, "\r\n")
	_, _ = fmt.Fprint(body, msg.TextContent)
	_, _ = fmt.Fprint(body, "\r\n")

	return []byte(body.String())
}

// sanitizeHeader strips CR and LF so user-provided values (a story title in
// the subject line) cannot smuggle extra headers into the wire message.
func sanitizeHeader(value string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(value)
}

func joinAddressList(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
