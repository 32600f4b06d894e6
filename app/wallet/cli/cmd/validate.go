package cmd

import (
	"encoding/json"
	"log"
	"os"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	chainFile   string
	genesisFile string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Restore a chain export and validate every block",
	Run:   validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&chainFile, "file", "f", "", "Path to the chain JSON.")
	validateCmd.Flags().StringVarP(&genesisFile, "genesis", "g", "zblock/genesis.yaml", "Path to the genesis file.")
	validateCmd.MarkFlagRequired("file")
}

func validateRun(cmd *cobra.Command, args []string) {
	gen, err := genesis.Load(genesisFile)
	if err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(chainFile)
	if err != nil {
		log.Fatal(err)
	}

	var blocks []database.BlockData
	if err := json.Unmarshal(data, &blocks); err != nil {
		log.Fatal(err)
	}

	if _, err := chain.Restore(chain.Config{Difficulty: gen.Difficulty}, blocks); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	pterm.Success.Printfln("chain of %d blocks is valid at difficulty %d", len(blocks), gen.Difficulty)
}
