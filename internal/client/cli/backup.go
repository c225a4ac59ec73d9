package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

// Export writes the current snapshot to a file as indented JSON,
// e.g. 'export backup.json'.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Println("Usage: export <file>")
		return nil
	}

	data, err := a.store.ExportSnapshot(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Exported to", args[0])
	return nil
}

// Import replaces the local state with a previously exported snapshot.
// A snapshot that fails to decode leaves the current state untouched.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Println("Usage: import <file>")
		return nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if err := a.store.ImportSnapshot(ctx, data); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Imported from", args[0])
	return nil
}

// Reset wipes all local data after a typed confirmation. The remote
// document, if any, is left alone.
func (a *App) Reset(ctx context.Context) error {
	ok, err := GetConfirmation(a.reader, "This deletes ALL local data.", "yes", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := a.store.ResetAll(ctx); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Local data cleared.")
	return nil
}
