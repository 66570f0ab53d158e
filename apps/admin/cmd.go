package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/services/graphql"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	sess *session.Manager
	api  *graphql.Client
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME|EMAIL - sign in; the password is prompted next")
	fmt.Fprintln(cli.out, "  logout                         - clear the stored session")
	fmt.Fprintln(cli.out, "  whoami                         - show the signed-in user and their panel sections")
	fmt.Fprintln(cli.out, "  activities [-user ID] [-status STATUS] [-limit N] - list activities")
	fmt.Fprintln(cli.out, "  stats                          - show dashboard statistics")
	fmt.Fprintln(cli.out, "  users                          - list accounts and their roles")
	fmt.Fprintln(cli.out, "  roles                          - list the role catalog")
	fmt.Fprintln(cli.out, "  courses                        - list the course catalog")
	fmt.Fprintln(cli.out, "  reports [-user ID]             - list reports")
	fmt.Fprintln(cli.out, "  watch                          - tail notifications and activities live")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginUname := loginCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	activitiesCmd := flag.NewFlagSet("activities", flag.ExitOnError)
	activitiesUser := activitiesCmd.String("user", "", "Filter by user ID.")
	activitiesStatus := activitiesCmd.String("status", "", "Filter by status (Completed | Pending | In Progress | Overdue).")
	activitiesLimit := activitiesCmd.Int("limit", 0, "Max number of activities to return.")

	reportsCmd := flag.NewFlagSet("reports", flag.ExitOnError)
	reportsUser := reportsCmd.String("user", "", "Filter by user ID.")

	cli.sess.Bootstrap()

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginUname, string(pwd))
	case "logout":
		return cli.logout()
	case "whoami":
		return cli.whoami()
	case "activities":
		if err := activitiesCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.activities(graphql.ActivityFilter{
			UserID: *activitiesUser,
			Status: *activitiesStatus,
			Limit:  *activitiesLimit,
		})
	case "stats":
		return cli.stats()
	case "users":
		return cli.users()
	case "roles":
		return cli.roles()
	case "courses":
		return cli.courses()
	case "reports":
		if err := reportsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.reports(*reportsUser)
	case "watch":
		return cli.watch(context.Background())
	default:
		cli.printUsage()
		return errHelp
	}
}
