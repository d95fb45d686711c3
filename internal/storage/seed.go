package storage

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"finboard/internal/core"
)

var seedNames = []string{
	"Olivia Martin", "Liam Johnson", "Emma Davis", "Noah Wilson",
	"Ava Thompson", "Mason Clark", "Sophia Lewis", "Ethan Walker",
	"Isabella Hall", "Lucas Young", "Mia Allen", "Henry King",
}

// Seed fills an empty transaction table with demo rows so a fresh
// instance has something on the dashboard. Rows get a random amount
// between 1 and 1000 units, a random status and a date within the
// last year.
func Seed(ctx context.Context, store TransactionStore, count int, seed int64) error {
	existing, err := store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		name := seedNames[rng.Intn(len(seedNames))]
		daysAgo := rng.Intn(365)
		date := now.AddDate(0, 0, -daysAgo)
		t := core.Transaction{
			Title:  "Payment to " + name,
			Amount: core.Money{Cents: int64(rng.Intn(100000) + 100)},
			Status: core.Statuses[rng.Intn(len(core.Statuses))],
			Date:   core.NewDate(date.Year(), int(date.Month()), date.Day()),
		}
		if _, err := store.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("seed transaction %d: %w", i+1, err)
		}
	}
	return nil
}
