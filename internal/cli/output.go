package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/xelth-com/ecktms/internal/models"
)

var (
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
)

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeEntities prints one compact JSON line per record.
// Records still waiting for the server are marked with "*".
func writeEntities(w io.Writer, entities []models.Entity) error {
	for _, e := range entities {
		line, err := json.Marshal(e.Payload())
		if err != nil {
			return fmt.Errorf("failed to render record: %w", err)
		}
		marker := " "
		if !e.Synced() {
			marker = yellow.Sprint("*")
		}
		fmt.Fprintf(w, "%s %s\n", marker, line)
	}
	return nil
}

// writeBranches prints branches as an aligned table
func writeBranches(w io.Writer, entities []models.Entity) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCODE\tCITY\tSTATUS\t")
	for _, e := range entities {
		b, err := models.BranchFromEntity(e)
		if err != nil {
			return err
		}
		id := "-"
		if b.ID != nil {
			id = fmt.Sprint(*b.ID)
		}
		status := b.Status
		if b.IsActive() {
			status = models.StatusActive
		}
		if !e.Synced() {
			status += " (queued)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", id, b.BranchName, b.BranchCode, b.City, status)
	}
	return tw.Flush()
}
