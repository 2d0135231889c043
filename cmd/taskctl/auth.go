package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}

func signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup [email]",
		Short: "Create an account and start a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, s, err := client(cmd)
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd)
			if err != nil {
				return err
			}
			token, err := c.SignUp(args[0], pw)
			if err != nil {
				return err
			}
			if err := saveSession(session{Server: s.Server, Token: token, Email: args[0]}); err != nil {
				return err
			}
			fmt.Printf("signed up as %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("password", "", "password (prompted if omitted)")
	return cmd
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, s, err := client(cmd)
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd)
			if err != nil {
				return err
			}
			token, err := c.SignIn(args[0], pw)
			if err != nil {
				return err
			}
			if err := saveSession(session{Server: s.Server, Token: token, Email: args[0]}); err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("password", "", "password (prompted if omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the server and forget it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				// no session to end; clearing the file is enough
				return clearSession()
			}
			if err := c.SignOut(); err != nil {
				fmt.Fprintf(os.Stderr, "server sign-out failed: %v\n", err)
			}
			return clearSession()
		},
	}
}
