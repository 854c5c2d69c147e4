// Command agent queues room bookings while disconnected and replays them
// against the server when connectivity returns.
//
// Usage:
//
//	agent enqueue <room-id> <date> <start> <end> <purpose...>
//	agent list
//	agent remove <entry-id>
//	agent sync
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"classbook/config"
	"classbook/infras/sqlite"
	"classbook/internal/offline"
	"classbook/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	if len(os.Args) < 2 {
		usage()
	}

	storePath := cfg.Offline.StorePath
	if storePath == "" {
		storePath = "classbook-agent.db"
	}

	db, err := sqlite.Open(storePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local queue database")
	}
	defer db.Close()

	store, err := offline.NewStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize local queue")
	}

	queue := offline.NewQueue(store)
	ctx := context.Background()

	switch os.Args[1] {
	case "enqueue":
		if len(os.Args) < 7 {
			usage()
		}

		entry, err := queue.Enqueue(ctx, os.Args[2], os.Args[3], os.Args[4], os.Args[5], strings.Join(os.Args[6:], " "))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to enqueue booking")
		}

		fmt.Printf("queued %s (%s)\n", entry.ID, entry.Status)
		fmt.Println("note: checked against the local queue only; the server decides on sync")
	case "list":
		entries, err := queue.List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list queue")
		}

		if len(entries) == 0 {
			fmt.Println("queue is empty")

			return
		}

		for _, entry := range entries {
			line := fmt.Sprintf("%s  %s  %s %s-%s  room=%s  attempts=%d  %s",
				entry.ID, entry.Status, entry.Date, entry.StartTime, entry.EndTime,
				entry.RoomID, entry.Attempts, entry.Purpose)

			if entry.LastError != nil {
				line += "  (" + *entry.LastError + ")"
			}

			fmt.Println(line)
		}
	case "remove":
		if len(os.Args) < 3 {
			usage()
		}

		if err := queue.Remove(ctx, os.Args[2]); err != nil {
			log.Fatal().Err(err).Msg("failed to remove entry")
		}

		fmt.Println("removed")
	case "sync":
		syncer := offline.NewSyncer(store, offline.NewHTTPSubmitter(cfg), cfg)

		report, err := syncer.Sync(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("sync failed")
		}

		fmt.Printf("synced=%d conflicts=%d failed=%d remaining=%d\n",
			report.Synced, report.Conflicts, report.Failed, report.Remaining)
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: agent <enqueue|list|remove|sync> [args]")
	os.Exit(2)
}
