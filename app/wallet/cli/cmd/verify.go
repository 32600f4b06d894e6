package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var txFile string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the signature of a transaction file",
	Run:   verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&txFile, "file", "f", "", "Path to the transaction JSON.")
	verifyCmd.MarkFlagRequired("file")
}

func verifyRun(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(txFile)
	if err != nil {
		log.Fatal(err)
	}

	var tx database.Tx
	if err := json.Unmarshal(data, &tx); err != nil {
		log.Fatal(err)
	}

	if err := tx.Validate(); err != nil {
		pterm.Error.Println(fmt.Sprintf("%s: %s", tx, err))
		os.Exit(1)
	}

	pterm.Success.Println(fmt.Sprintf("%s: hash[%s]", tx, tx.Hash().Hex()))
}
