package main

import (
	"fmt"
	"net/mail"

	"github.com/datastorylab/showtell/core"
	emailsvc "github.com/datastorylab/showtell/services/email"
	logsvc "github.com/datastorylab/showtell/services/logger"
)

var newMailServiceFunc = newMailService // mockable

// sendTest sends a plain test email through the configured backend so a
// deployment's credentials can be checked before students hit submit.
func (cli *commandLine) sendTest(to string) error {
	msg := &core.EmailMessage{
		To:          []mail.Address{{Address: to}},
		Subject:     "Test email",
		TextContent: "This is a test email from the " + cli.conf.AppName + " admin CLI.",
	}
	if err := newMailServiceFunc(cli.conf).SendMessage(msg); err != nil {
		return err
	}
	fmt.Printf("test email sent to %s\n", to)
	return nil
}

// needsPassword reports whether the SMTP password must be prompted for.
func (cli *commandLine) needsPassword() bool {
	conf := cli.conf
	if conf.Debug || conf.Mail.Backend != "smtp" {
		return false
	}
	return conf.Mail.Password == ""
}

func newMailService(conf *core.Config) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	if conf.Mail.Backend == "sendgrid" {
		return emailsvc.NewSendgridService(conf, logsvc.NewRollbarLogger(logger, conf))
	}
	return emailsvc.NewSMTPService(conf)
}
