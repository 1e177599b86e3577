package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/datastorylab/showtell/core"
	"github.com/datastorylab/showtell/core/story"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db   *sql.DB
	conf *core.Config
	repo story.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  setweek -number N [-label LABEL] - register a week and pin it as the active one")
	fmt.Println("  sendtest -to EMAIL - send a test email via the configured backend")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setWeekCmd := flag.NewFlagSet("setweek", flag.ExitOnError)
	setWeekNumber := setWeekCmd.Int("number", 0, "The week number to activate.")
	setWeekLabel := setWeekCmd.String("label", "", "An optional display label; defaults to \"Week N\".")

	sendTestCmd := flag.NewFlagSet("sendtest", flag.ExitOnError)
	sendTestTo := sendTestCmd.String("to", "", "The recipient address of the test email.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "setweek":
		if err := setWeekCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setWeekNumber < 1 {
			setWeekCmd.Usage()
			return errHelp
		}
		return cli.setWeek(*setWeekNumber, *setWeekLabel)
	case "sendtest":
		if err := sendTestCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *sendTestTo == "" {
			sendTestCmd.Usage()
			return errHelp
		}
		if cli.needsPassword() {
			fmt.Print("Enter email password:")
			pwd, err := readPasswordFunc(syscall.Stdin)
			fmt.Println()
			if err != nil {
				return err
			}
			if len(pwd) == 0 {
				sendTestCmd.Usage()
				return errHelp
			}
			cli.conf.Mail.Password = string(pwd)
		}
		return cli.sendTest(*sendTestTo)
	default:
		cli.printUsage()
		return errHelp
	}
}
