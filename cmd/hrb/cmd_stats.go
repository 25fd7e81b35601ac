// cmd_stats.go
package main

import (
	"io"

	herbrand "github.com/BlackVectorOps/herbrand"
)

// -- STATS COMMAND --

func runStats(w io.Writer, dbPath string) error {
	store, err := herbrand.OpenResultStore(dbPath, herbrand.StoreOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	return writeJSON(w, stats)
}
