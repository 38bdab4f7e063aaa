package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"

	"warehousebot/internal/config"
	"warehousebot/internal/http/handlers"
	applog "warehousebot/internal/log"
	"warehousebot/internal/repos"
	"warehousebot/internal/services"
	"warehousebot/internal/state"
)

func main() {
	cfg := config.Load()
	applog.Setup(cfg.LogFile)

	cmd := &cli.Command{
		Name:   "warehousebot",
		Usage:  "Warehouse inventory chat bot and read API",
		Action: func(ctx context.Context, c *cli.Command) error { return serve(ctx, cfg) },
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server (chat transport, API, report)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, cfg)
				},
			},
			{
				Name:  "migrate",
				Usage: "Create or update the database schema",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := repos.OpenDB(cfg.DBDSN)
					if err != nil {
						return err
					}
					defer db.Close()
					log.Printf("[migrate] schema ready in %s", cfg.DBDSN)
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Insert a small demo catalog",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := repos.OpenDB(cfg.DBDSN)
					if err != nil {
						return err
					}
					defer db.Close()
					if err := repos.SeedDemo(db, services.Clock{Loc: cfg.Location()}.Stamp()); err != nil {
						return err
					}
					log.Printf("[seed] demo catalog inserted")
					return nil
				},
			},
			{
				Name:  "state",
				Usage: "Inspect or reset conversation state",
				Commands: []*cli.Command{
					{
						Name:  "clear",
						Usage: "Drop the in-progress flow of one actor",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "actor", Usage: "actor id", Required: true},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							actor := c.Int64("actor")
							return withStates(cfg, func(_ *sqlx.DB, st state.Store) error {
								if err := st.Clear(actor); err != nil {
									return err
								}
								applog.ActorAudit(actor, "state.clear.operator", nil)
								return nil
							})
						},
					},
					{
						Name:  "prune",
						Usage: "Drop flows untouched for longer than --older-than (sqlite backend)",
						Flags: []cli.Flag{
							&cli.DurationFlag{Name: "older-than", Value: 7 * 24 * time.Hour},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							cutoff := time.Now().Add(-c.Duration("older-than"))
							return withStates(cfg, func(_ *sqlx.DB, st state.Store) error {
								sq, ok := st.(*state.SQLStore)
								if !ok {
									return errors.New("prune needs STATE_BACKEND=sqlite; badger flows expire through STATE_TTL")
								}
								ids, err := sq.Stale(cutoff)
								if err != nil {
									return err
								}
								for _, id := range ids {
									if err := sq.Clear(id); err != nil {
										return err
									}
									applog.ActorAudit(id, "state.prune", nil)
								}
								log.Printf("[state] pruned %d flows", len(ids))
								return nil
							})
						},
					},
				},
			},
			{
				Name:  "low-stock",
				Usage: "Print items at or below their threshold",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := repos.OpenDB(cfg.DBDSN)
					if err != nil {
						return err
					}
					defer db.Close()
					items, err := services.NewInventoryService(repos.NewInventoryRepo(db)).LowStock()
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ITEM\tCODE\tBRAND\tAVAILABLE\tTHRESHOLD")
					for _, it := range items {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n",
							it.Name, it.CustomCode, it.BrandName, it.AvailableCount, it.MeasureTypeName, it.LowStockThreshold)
					}
					return w.Flush()
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// openStates opens the configured conversation-state backend.
func openStates(cfg config.Config, db *sqlx.DB) (state.Store, func() error, error) {
	switch cfg.StateBackend {
	case "", "sqlite":
		return state.NewSQLStore(db), func() error { return nil }, nil
	case "badger":
		bs, err := state.OpenBadger(cfg.StateDir, cfg.StateTTL)
		if err != nil {
			return nil, nil, err
		}
		return bs, bs.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown STATE_BACKEND %q", cfg.StateBackend)
}

func withStates(cfg config.Config, fn func(*sqlx.DB, state.Store) error) error {
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	st, closeStates, err := openStates(cfg, db)
	if err != nil {
		return err
	}
	defer closeStates()
	return fn(db, st)
}

func serve(ctx context.Context, cfg config.Config) error {
	return withStates(cfg, func(db *sqlx.DB, st state.Store) error {
		deps, err := handlers.NewDeps(db, cfg, st)
		if err != nil {
			return err
		}
		engine := html.New("./web/templates", ".html")
		app := handlers.NewApp(deps, engine)

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			log.Printf("[serve] shutting down")
			_ = app.ShutdownWithTimeout(10 * time.Second)
		}()

		log.Printf("[serve] listening on :%s (state: %s)", cfg.Port, cfg.StateBackend)
		return app.Listen(":" + cfg.Port)
	})
}
