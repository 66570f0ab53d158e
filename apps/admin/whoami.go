package main

import (
	"context"
	"fmt"

	"github.com/darasahq/darasa/core/identity"
	"github.com/darasahq/darasa/core/session"
)

func (cli *commandLine) whoami() error {
	if !cli.sess.State().Authenticated() {
		return session.ErrNotAuthenticated
	}

	usr, err := cli.api.Me(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s <%s>\n", usr.Name, usr.Email)
	fmt.Fprintf(cli.out, "Role: %s\n", usr.RoleName())
	fmt.Fprintln(cli.out, "Sections:")
	for _, item := range identity.NavItems(usr.RoleName()) {
		fmt.Fprintf(cli.out, "  %-24s %s\n", item.Key, item.Label)
	}
	return nil
}
