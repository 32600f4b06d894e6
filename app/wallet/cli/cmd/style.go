package cmd

import (
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
)

// namer resolves an account to a readable name.
type namer func(database.AccountID) string

// renderBlocks prints one row per block followed by a row per transaction.
func renderBlocks(blocks []database.BlockData, name namer) error {
	data := pterm.TableData{
		{"Number", "Time", "Hash", "Prev", "Nonce", "Effort", "Payload"},
	}

	for _, b := range blocks {
		data = append(data, []string{
			fmt.Sprint(b.Header.Number),
			time.Unix(int64(b.Header.TimeStamp), 0).UTC().Format(time.DateTime),
			short(b.Hash),
			short(b.Header.PrevBlockHash),
			fmt.Sprint(b.Header.Nonce),
			fmt.Sprint(b.Effort),
			payload(b.Payload, name),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func payload(p database.Payload, name namer) string {
	if len(p.Trans) == 0 {
		return p.Data
	}

	var s string
	for i, tx := range p.Trans {
		if i > 0 {
			s += "\n"
		}
		s += fmt.Sprintf("%s -> %s: %d", name(tx.Sender), name(tx.Receiver), tx.Amount)
	}

	return s
}

func short(hash string) string {
	if len(hash) <= 18 {
		return hash
	}
	return hash[:10] + ".." + hash[len(hash)-6:]
}
