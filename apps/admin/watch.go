package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/darasahq/darasa/core/activity"
	"github.com/darasahq/darasa/core/notify"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/services/graphql"
)

// watch tails notifications and activities live. The initial queries and the
// subscription streams overlap; the center/feed dedup by ID so each entry
// prints once.
func (cli *commandLine) watch(ctx context.Context) error {
	if !cli.sess.State().Authenticated() {
		return session.ErrNotAuthenticated
	}

	center := notify.NewCenter()
	if initial, err := cli.api.Notifications(ctx); err == nil {
		center.Reset(initial)
	}
	feed := activity.NewFeed()
	if initial, err := cli.api.Activities(ctx, graphql.ActivityFilter{}); err == nil {
		feed.Reset(initial)
	}

	notifSub, err := cli.api.SubscribeNotifications(ctx)
	if err != nil {
		return err
	}
	defer notifSub.Close()

	actSub, err := cli.api.SubscribeActivities(ctx)
	if err != nil {
		return err
	}
	defer actSub.Close()

	fmt.Fprintf(cli.out, "Watching (%d unread notifications)... Ctrl-C to stop\n", center.Unread())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	for {
		select {
		case ev, ok := <-notifSub.Events():
			if !ok {
				return nil
			}
			n, err := graphql.DecodeNotification(ev)
			if err != nil {
				fmt.Fprintf(cli.out, "notification stream: %v\n", err)
				continue
			}
			if center.Add(n) {
				fmt.Fprintf(cli.out, "%s  [%d unread] %s\n", n.CreatedAt, center.Unread(), n.Message)
			}
		case ev, ok := <-actSub.Events():
			if !ok {
				return nil
			}
			a, err := graphql.DecodeActivity(ev)
			if err != nil {
				fmt.Fprintf(cli.out, "activity stream: %v\n", err)
				continue
			}
			if feed.Add(a) {
				cli.printActivity(a)
			}
		case <-ctx.Done():
			return nil
		case <-sigCh:
			return nil
		}
	}
}
