// Command nostrdb-inspect is a small operator tool for poking at a
// nostrdb data directory directly: check stats, fetch an event by id,
// run a filter query, or delete an event.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Hakkadaikon/nostrdb/config"
	"github.com/Hakkadaikon/nostrdb/logger"
	"github.com/Hakkadaikon/nostrdb/nostrfilter"
	"github.com/Hakkadaikon/nostrdb/relay"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "nostrdb-inspect",
		Usage: "inspect and query a nostrdb data directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "path to the nostrdb data directory",
				Value:   "./data",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn, error",
				Value: "info",
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			newStatsCmd(),
			newGetCmd(),
			newQueryCmd(),
			newDeleteCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.L().Errorw("nostrdb-inspect failed", "err", err)
		os.Exit(1)
	}
}

func openRelay(c *cli.Context) (*relay.Relay, error) {
	cfg := config.Default()
	cfg.DataDir = c.String("data-dir")
	return relay.Open(cfg)
}

func newStatsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "print event and index counts",
		Action: func(c *cli.Context) error {
			r, err := openRelay(c)
			if err != nil {
				return err
			}
			defer r.Close()

			stats := r.Stats()
			fmt.Printf("event_count:       %d\n", stats.EventCount)
			fmt.Printf("deleted_count:     %d\n", stats.DeletedCount)
			fmt.Printf("events_file_size:  %d\n", stats.EventsFileSize)
			for _, name := range []string{"id", "pubkey", "kind", "pubkey_kind", "tag", "timeline"} {
				fmt.Printf("index[%-12s] entry_count: %d\n", name, stats.IndexEntryCounts[name])
			}
			return nil
		},
	}
}

func newGetCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "fetch one event by hex id",
		ArgsUsage: "<id-hex>",
		Action: func(c *cli.Context) error {
			id, err := parseHexID(c.Args().First())
			if err != nil {
				return err
			}
			r, err := openRelay(c)
			if err != nil {
				return err
			}
			defer r.Close()

			e, err := r.GetEventByID(id)
			if err != nil {
				return err
			}
			fmt.Printf("id:         %x\n", e.ID)
			fmt.Printf("pubkey:     %x\n", e.PubKey)
			fmt.Printf("kind:       %d\n", e.Kind)
			fmt.Printf("created_at: %d\n", e.CreatedAt)
			fmt.Printf("content:    %s\n", e.Content)
			for _, tag := range e.Tags {
				fmt.Printf("tag:        %s %v\n", tag.Name, tag.Values)
			}
			return nil
		},
	}
}

func newDeleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "tombstone one event by hex id",
		ArgsUsage: "<id-hex>",
		Action: func(c *cli.Context) error {
			id, err := parseHexID(c.Args().First())
			if err != nil {
				return err
			}
			r, err := openRelay(c)
			if err != nil {
				return err
			}
			defer r.Close()

			if err := r.DeleteEvent(id); err != nil {
				return err
			}
			fmt.Println("deleted")
			return nil
		},
	}
}

func newQueryCmd() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "run a filter against the store and list matching offsets",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "kind", Usage: "kind number, repeatable"},
			&cli.StringSliceFlag{Name: "author", Usage: "hex pubkey, repeatable"},
			&cli.Int64Flag{Name: "since", Usage: "unix seconds, inclusive lower bound"},
			&cli.Int64Flag{Name: "until", Usage: "unix seconds, inclusive upper bound"},
			&cli.UintFlag{Name: "limit", Usage: "0 uses the configured default"},
		},
		Action: func(c *cli.Context) error {
			filter, err := filterFromFlags(c)
			if err != nil {
				return err
			}
			r, err := openRelay(c)
			if err != nil {
				return err
			}
			defer r.Close()

			rs, err := r.Query(filter)
			if err != nil {
				return err
			}
			for i := 0; i < rs.Len(); i++ {
				fmt.Printf("offset=%d created_at=%d\n", rs.Offset(i), rs.CreatedAt(i))
			}
			return nil
		},
	}
}

func filterFromFlags(c *cli.Context) (*nostrfilter.Filter, error) {
	f := &nostrfilter.Filter{
		Since: c.Int64("since"),
		Until: c.Int64("until"),
		Limit: uint32(c.Uint("limit")),
	}
	for _, k := range c.StringSlice("kind") {
		n, err := strconv.ParseUint(strings.TrimSpace(k), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid kind %q: %w", k, err)
		}
		f.Kinds = append(f.Kinds, uint32(n))
	}
	for _, a := range c.StringSlice("author") {
		pk, err := parseHexID(a)
		if err != nil {
			return nil, err
		}
		f.Authors = append(f.Authors, pk)
	}
	return f, nil
}

func parseHexID(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return out, fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
