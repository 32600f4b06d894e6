package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount uint64
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Print a signed transaction as JSON",
	Run:   signRun,
}

func init() {
	rootCmd.AddCommand(signCmd)
	signCmd.Flags().StringVarP(&to, "to", "t", "", "Account receiving the amount.")
	signCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	signCmd.MarkFlagRequired("to")
}

func signRun(cmd *cobra.Command, args []string) {
	tx, err := signTx()
	if err != nil {
		log.Fatal(err)
	}

	data, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(data))
}

// signTx builds a transaction from the command line flags and signs it with
// the wallet's private key.
func signTx() (database.Tx, error) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		return database.Tx{}, err
	}

	tx, err := database.NewTx(database.PublicKeyToAccountID(privateKey.PublicKey), database.AccountID(to), amount)
	if err != nil {
		return database.Tx{}, err
	}

	if err := tx.Sign(privateKey); err != nil {
		return database.Tx{}, err
	}

	return tx, nil
}
