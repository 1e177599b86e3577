package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/datastorylab/showtell/core"
	emailsvc "github.com/datastorylab/showtell/services/email"
	inmemrepos "github.com/datastorylab/showtell/storage/database/inmem"
	testutil "github.com/datastorylab/showtell/tests"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	return &commandLine{
		conf: testutil.NewConfig(),
		repo: inmemrepos.NewStoryRepository(),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "weeks", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_setWeek(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"setweek"}, wantErr: errHelp},
		{name: "zero week number", args: []string{"setweek", "-number", "0"}, wantErr: errHelp},
		{name: "default label", args: []string{"setweek", "-number", "6"}, extra: "Week 6"},
		{name: "custom label", args: []string{"setweek", "-number", "7", "-label", "Finals"}, extra: "Finals"},
		{name: "existing week keeps label", args: []string{"setweek", "-number", "7"}, extra: "Finals"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			wantLabel := tt.extra.(string)
			var number int
			fmt.Sscanf(tt.args[2], "%d", &number)
			week, err := cli.repo.UpsertWeek(context.Background(), number, "")
			if err != nil {
				t.Fatalf("UpsertWeek() failed: %v", err)
			}
			if week.Label != wantLabel {
				t.Errorf("week.Label = %q; want %q", week.Label, wantLabel)
			}
		})
	}
}

func Test_commandLine_sendTest(t *testing.T) {
	cli := setup(t)

	newMailServiceFunc = func(conf *core.Config) core.EmailService {
		return emailsvc.NewConsoleServiceMock(conf)
	}
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("hunter2"), nil }

	tests := []cliTest{
		{name: "no args", args: []string{"sendtest"}, wantErr: errHelp},
		{name: "ok", args: []string{"sendtest", "-to", "awe@test.cd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ResetSentMessages()

			err := cli.run(args)
			if err != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if len(emailsvc.SentMessages) != 1 {
				t.Fatalf("len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
			}
			msg := emailsvc.SentMessages[0]
			if msg.To[0].Address != "awe@test.cd" {
				t.Errorf("To = %v", msg.To)
			}
			if msg.Subject != "Test email" {
				t.Errorf("Subject = %q", msg.Subject)
			}
		})
	}

	t.Run("smtp password prompted when unset", func(t *testing.T) {
		emailsvc.ResetSentMessages()
		cli.conf.Mail.Backend = "smtp"
		cli.conf.Mail.Password = ""
		defer func() {
			cli.conf.Mail.Backend = "console"
			cli.conf.Mail.Password = ""
		}()

		if err := cli.run([]string{"admin", "sendtest", "-to", "awe@test.cd"}); err != nil {
			t.Fatalf("cli.run() failed! err %v", err)
		}
		if cli.conf.Mail.Password != "hunter2" {
			t.Errorf("Mail.Password = %q; want the prompted value", cli.conf.Mail.Password)
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Errorf("len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
		}
	})
}
