// cmd_index.go
package main

import (
	"fmt"
	"io"

	herbrand "github.com/BlackVectorOps/herbrand"
)

// -- INDEX COMMAND --

func runIndex(w io.Writer, file, name, dbPath string) error {
	prog, err := herbrand.ParseFile(file)
	if err != nil {
		return err
	}
	a := herbrand.Analyze(prog)
	rec := herbrand.RecordOf(a, name)

	store, err := herbrand.OpenResultStore(dbPath, herbrand.StoreOptions{})
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Put(rec); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return writeJSON(w, rec)
}
