package main

import (
	"context"
	"fmt"
)

// setWeek registers the week row so submissions can reference it. The running
// API picks the active week from CURRENT_WEEK or its admin override; this
// keeps the table in sync ahead of a deploy.
func (cli *commandLine) setWeek(number int, label string) error {
	ctx := context.Background()

	week, err := cli.repo.UpsertWeek(ctx, number, label)
	if err != nil {
		return err
	}
	fmt.Printf("week %d (%q) registered; set CURRENT_WEEK=%d to activate it\n", week.Number, week.Label, week.Number)
	return nil
}
