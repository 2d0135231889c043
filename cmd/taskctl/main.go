// taskctl is the command line client for a taskden server. It keeps a
// session file under the user config dir so auth survives between runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "taskctl",
		Short:   "taskctl - talk to a taskden server from the terminal",
		Version: Version,
	}

	rootCmd.PersistentFlags().String("server", "", "server base URL (defaults to the saved session's server)")

	rootCmd.AddCommand(signupCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(lsCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(captureCmd())
	rootCmd.AddCommand(backupCmd())
	rootCmd.AddCommand(restoreCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
