package cmd

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	difficulty uint
	workers    int
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Mine a small chain and show the tamper and signing checks",
	Run:   demoRun,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().UintVarP(&difficulty, "difficulty", "d", 3, "Leading zero hex digits required.")
	demoCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Goroutines searching for a nonce.")
}

func demoRun(cmd *cobra.Command, args []string) {
	if err := demo(cmd.Context()); err != nil {
		log.Fatal(err)
	}
}

func demo(ctx context.Context) error {
	ns, err := nameservice.New(accountPath)
	if err != nil {
		return err
	}

	// =========================================================================

	pterm.DefaultSection.Println("Mining")

	chn, err := chain.New(chain.Config{Difficulty: difficulty, Workers: workers})
	if err != nil {
		return err
	}

	if _, err := chn.AppendData(ctx, "Alice pays Bob 5"); err != nil {
		return err
	}

	alice, err := crypto.LoadECDSA(keyPath("alice"))
	if err != nil {
		return err
	}

	bob, err := crypto.LoadECDSA(keyPath("bob"))
	if err != nil {
		return err
	}

	aliceID := database.PublicKeyToAccountID(alice.PublicKey)
	bobID := database.PublicKeyToAccountID(bob.PublicKey)

	transfers := []struct {
		from   *ecdsa.PrivateKey
		to     database.AccountID
		amount uint64
	}{
		{from: alice, to: bobID, amount: 5},
		{from: bob, to: aliceID, amount: 2},
	}

	var trans []database.Tx
	for _, t := range transfers {
		tx, err := database.NewTx(database.PublicKeyToAccountID(t.from.PublicKey), t.to, t.amount)
		if err != nil {
			return err
		}
		if err := tx.Sign(t.from); err != nil {
			return err
		}
		trans = append(trans, tx)
	}

	if _, err := chn.Append(ctx, database.NewTxPayload(trans)); err != nil {
		return err
	}

	if err := renderBlocks(chn.Export(), ns.Lookup); err != nil {
		return err
	}

	if err := chn.Verify(); err != nil {
		return err
	}
	pterm.Success.Printfln("chain validates at difficulty %d", chn.Difficulty())

	// =========================================================================

	pterm.DefaultSection.Println("Tampering")

	export := chn.Export()
	export[1].Payload.Data = "Alice pays Bob 6"

	if _, err := chain.Restore(chain.Config{Difficulty: difficulty}, export); err != nil {
		pterm.Success.Printfln("edited payload detected: %s", err)
	} else {
		pterm.Error.Println("edited payload was not detected")
	}

	// =========================================================================

	pterm.DefaultSection.Println("Signing")

	tx := trans[0]
	pterm.Info.Printfln("%s: verify[%t]", txLabel(tx, ns), tx.Verify())

	tx.Amount = 6
	pterm.Info.Printfln("%s: verify[%t]", txLabel(tx, ns), tx.Verify())

	return nil
}

func txLabel(tx database.Tx, ns *nameservice.NameService) string {
	return fmt.Sprintf("%s pays %s %d", ns.Lookup(tx.Sender), ns.Lookup(tx.Receiver), tx.Amount)
}
