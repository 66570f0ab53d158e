package main

import (
	"context"
	"fmt"

	"github.com/darasahq/darasa/core/session"
)

func (cli *commandLine) users() error {
	if !cli.sess.State().Authenticated() {
		return session.ErrNotAuthenticated
	}
	list, err := cli.api.Users(context.Background())
	if err != nil {
		return err
	}
	for _, usr := range list {
		fmt.Fprintf(cli.out, "%-36s  %-24s %-32s %s\n", usr.ID, usr.Name, usr.Email, usr.RoleName())
	}
	return nil
}

func (cli *commandLine) roles() error {
	if !cli.sess.State().Authenticated() {
		return session.ErrNotAuthenticated
	}
	list, err := cli.api.Roles(context.Background())
	if err != nil {
		return err
	}
	for _, role := range list {
		fmt.Fprintf(cli.out, "%-36s  %s\n", role.ID, role.Name)
	}
	return nil
}

func (cli *commandLine) courses() error {
	if !cli.sess.State().Authenticated() {
		return session.ErrNotAuthenticated
	}
	list, err := cli.api.Courses(context.Background())
	if err != nil {
		return err
	}
	for _, c := range list {
		instructor := "unassigned"
		if c.Instructor != nil {
			instructor = c.Instructor.Name
		}
		fmt.Fprintf(cli.out, "%-10s %-32s %-24s %d students\n", c.Code, c.Title, instructor, c.EnrolledStudentCount)
	}
	return nil
}

func (cli *commandLine) reports(userID string) error {
	if !cli.sess.State().Authenticated() {
		return session.ErrNotAuthenticated
	}
	list, err := cli.api.Reports(context.Background(), userID)
	if err != nil {
		return err
	}
	for _, r := range list {
		fmt.Fprintf(cli.out, "%-16s %-24s %s .. %s\n", r.Type, r.User.Name, r.StartDate, r.EndDate)
		if r.Content != "" {
			fmt.Fprintf(cli.out, "  %s\n", r.Content)
		}
	}
	return nil
}
