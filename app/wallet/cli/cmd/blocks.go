package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/spf13/cobra"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Print the chain held by a node",
	Run:   blocksRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	blocksCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func blocksRun(cmd *cobra.Command, args []string) {
	ns, err := nameservice.New(accountPath)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Get(fmt.Sprintf("%s/v1/blocks/list", url))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("status[%d]", resp.StatusCode)
	}

	var blocks []database.BlockData
	if err := json.NewDecoder(resp.Body).Decode(&blocks); err != nil {
		log.Fatal(err)
	}

	if err := renderBlocks(blocks, ns.Lookup); err != nil {
		log.Fatal(err)
	}
}
