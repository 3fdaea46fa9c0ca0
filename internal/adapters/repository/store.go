// Package repository loads raw production records from the per-machine
// stores: a directory of CSV/XLSX files, a Postgres table, or memory.
package repository

import (
	"context"

	"github.com/okian/prodboard/internal/domain/model"
)

// Store provides read access to the machine record stores.
type Store interface {
	// Load returns every record of one machine in store order.
	// Returns ErrNotFound if the machine has no store.
	Load(ctx context.Context, machine string) ([]model.RawRecord, error)

	// Machines lists the machines the store knows about, sorted by name.
	Machines(ctx context.Context) ([]string, error)
}
