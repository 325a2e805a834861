package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avi3tal/stratagraph/internal/graph"
	"github.com/avi3tal/stratagraph/pkg/store"
	"github.com/avi3tal/stratagraph/pkg/store/postgres"
	"github.com/avi3tal/stratagraph/pkg/types"
	"github.com/avi3tal/stratagraph/pkg/workflow"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b := workflow.NewBuilder("dca strategy", workflow.WithLogger(logger))

	branch := b.Begin("Start", json.RawMessage(`{"kind":"noop"}`)).
		ThenIf(
			workflow.Step{Label: "Check", Data: json.RawMessage(`{"kind":"price_below","asset":"ETH","usd":2500}`)},
			workflow.Step{Label: "Trade", Data: json.RawMessage(`{"kind":"swap","from":"USDC","to":"ETH","amount":"100"}`)},
			workflow.Step{Label: "Fallback", Data: json.RawMessage(`{"kind":"notify","channel":"email"}`)},
		)
	if err := branch.Err(); err != nil {
		log.Fatalf("Failed to build strategy: %v", err)
	}

	if _, err := b.Validate(); err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				fmt.Fprintf(os.Stderr, "  - %s\n", issue)
			}
		}
		log.Fatalf("Strategy is invalid: %v", err)
	}
	if _, err := b.SetStatus(types.StatusActive); err != nil {
		log.Fatalf("Failed to activate strategy: %v", err)
	}
	b.Get().PrintGraph(os.Stdout)

	start := time.Now()
	program, err := b.EncodeChain()
	if err != nil {
		log.Fatalf("Failed to encode strategy: %v", err)
	}
	out, _ := json.MarshalIndent(program, "", "  ")
	fmt.Printf("\nInstructions (%d, encoded in %v):\n%s\n", len(program), time.Since(start), out)

	var docs store.Store = store.NewMemoryStore()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		pool, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer pool.Close()

		pg := postgres.New(pool)
		if err := pg.CreateSchema(ctx); err != nil {
			log.Fatalf("schema: %v", err)
		}
		docs = pg
	}

	repo := store.NewRepository(docs, store.WithRepositoryLogger(logger))
	if err := repo.Save(ctx, b.Get()); err != nil {
		log.Fatalf("Failed to save strategy: %v", err)
	}
	restored, err := repo.Load(ctx, b.Get().ID)
	if err != nil {
		log.Fatalf("Failed to load strategy: %v", err)
	}
	if _, err := graph.Validate(restored); err != nil {
		log.Fatalf("Restored strategy is invalid: %v", err)
	}
	fmt.Printf("\nRestored %s with %d nodes\n", restored.ID, restored.Len())
}
