// Package cmd contains the ledger wallet app.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	url         string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Name of the private key.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
}

var rootCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Sign, verify and mine with the ledger",
}

// Execute runs the command selected on the command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	return keyPath(accountName)
}

func keyPath(name string) string {
	if !strings.HasSuffix(name, nameservice.KeyExt) {
		name += nameservice.KeyExt
	}

	return filepath.Join(accountPath, name)
}
