package main

import (
	"context"
	"fmt"

	"github.com/darasahq/darasa/core/activity"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/services/graphql"
)

func (cli *commandLine) activities(filter graphql.ActivityFilter) error {
	if !cli.sess.State().Authenticated() {
		return session.ErrNotAuthenticated
	}

	list, err := cli.api.Activities(context.Background(), filter)
	if err != nil {
		return err
	}

	feed := activity.NewFeed()
	feed.Reset(list)
	for _, a := range feed.List() {
		cli.printActivity(a)
	}
	return nil
}

func (cli *commandLine) stats() error {
	if !cli.sess.State().Authenticated() {
		return session.ErrNotAuthenticated
	}

	stats, err := cli.api.DashboardStats(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Activities: %d total, %d completed, %d pending\n",
		stats.TotalActivities, stats.CompletedActivities, stats.PendingActivities)
	for _, tc := range stats.PerType {
		fmt.Fprintf(cli.out, "  %-24s %d\n", tc.Type, tc.Count)
	}
	return nil
}

func (cli *commandLine) printActivity(a activity.Activity) {
	fmt.Fprintf(cli.out, "%s  %-20s %-12s %s\n", a.Timestamp, a.Type, a.Status, a.User.Name)
}
