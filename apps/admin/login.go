package main

import (
	"context"
	"fmt"

	"github.com/darasahq/darasa/core/session"
)

func (cli *commandLine) login(uname, pwd string) error {
	err := cli.sess.Login(context.Background(), session.Credentials{Username: uname, Password: pwd})
	if err != nil {
		if msg := cli.sess.State().Err; msg != "" {
			fmt.Fprintln(cli.out, msg)
		}
		return err
	}

	st := cli.sess.State()
	fmt.Fprintf(cli.out, "Signed in as %s (%s)\n", st.Identity.Name, st.Identity.RoleName())
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.sess.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Signed out")
	return nil
}
