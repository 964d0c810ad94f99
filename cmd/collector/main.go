package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rosterpulse/rosterpulse/internal/roster"
	"github.com/rosterpulse/rosterpulse/internal/setup"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"github.com/rosterpulse/rosterpulse/internal/worker/backfill"
	"github.com/rosterpulse/rosterpulse/internal/worker/update"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var (
	ErrNameRequired   = errors.New("influencer name is required")
	ErrHandleRequired = errors.New("at least one social media handle is required")
	ErrNoInfluencers  = errors.New("no active influencers found")
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "collector",
		Usage: "Collect social media metrics for the influencer roster",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dev",
				Usage: "Write to local CSV files instead of the warehouse",
			},
		},
		// Routine update is the default, intended for scheduled execution
		Action: updateAction,
		Commands: []*cli.Command{
			{
				Name:   "update",
				Usage:  "Update all active influencers due for a refresh",
				Action: updateAction,
			},
			{
				Name:   "add",
				Usage:  "Add a new influencer and backfill 12 months of history",
				Action: addAction,
			},
			{
				Name:   "edit",
				Usage:  "Edit an existing influencer's platform handles",
				Action: editAction,
			},
			{
				Name:  "serve",
				Usage: "Run routine updates on a cron schedule until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "schedule",
						Aliases: []string{"s"},
						Value:   "@daily",
						Usage:   "Cron expression for routine update runs",
					},
				},
				Action: serveAction,
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// updateAction runs one routine update sweep.
func updateAction(ctx context.Context, c *cli.Command) error {
	app, err := setup.InitializeApp(ctx, c.Bool("dev"))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	worker := update.New(app.Sink, app.Client, app.Logger)

	_, err = worker.Run(ctx)

	return err
}

// addAction interactively collects a new influencer, persists it and
// backfills the full historical window for every supplied handle.
func addAction(ctx context.Context, c *cli.Command) error {
	app, err := setup.InitializeApp(ctx, c.Bool("dev"))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	inf, err := promptInfluencer(bufio.NewReader(os.Stdin))
	if err != nil {
		return err
	}

	if err := app.Sink.SaveInfluencer(ctx, inf); err != nil {
		return fmt.Errorf("failed to save influencer: %w", err)
	}

	app.Logger.Info("Added influencer", zap.String("name", inf.Name))
	fmt.Println("\nFetching one year of historical data...")

	worker := backfill.New(app.Sink, app.Client, app.Logger)

	return worker.Run(ctx, inf)
}

// editAction interactively updates the platform handles of an existing
// influencer. Platforms left empty keep their current handle.
func editAction(ctx context.Context, c *cli.Command) error {
	app, err := setup.InitializeApp(ctx, c.Bool("dev"))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	influencers, err := app.Sink.ActiveInfluencers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active influencers: %w", err)
	}

	if len(influencers) == 0 {
		return ErrNoInfluencers
	}

	reader := bufio.NewReader(os.Stdin)

	inf := promptSelection(reader, influencers)
	updates := promptHandleUpdates(reader, inf)

	if len(updates) == 0 {
		fmt.Println("No changes made")
		return nil
	}

	if err := app.Sink.UpdateHandles(ctx, inf.ID, updates); err != nil {
		return fmt.Errorf("failed to update handles: %w", err)
	}

	app.Logger.Info("Updated influencer",
		zap.String("name", inf.Name),
		zap.Int("handles", len(updates)))

	return nil
}

// serveAction keeps running routine sweeps on the given cron schedule until
// the process receives SIGINT or SIGTERM.
func serveAction(ctx context.Context, c *cli.Command) error {
	app, err := setup.InitializeApp(ctx, c.Bool("dev"))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := update.New(app.Sink, app.Client, app.Logger)

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err = scheduler.AddFunc(c.String("schedule"), func() {
		if _, err := worker.Run(ctx); err != nil {
			app.Logger.Error("Routine update sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", c.String("schedule"), err)
	}

	app.Logger.Info("Scheduler started", zap.String("schedule", c.String("schedule")))
	scheduler.Start()

	<-ctx.Done()

	app.Logger.Info("Shutting down scheduler")
	<-scheduler.Stop().Done()

	return nil
}

// promptInfluencer collects the influencer name and per-platform handles
// from the terminal.
func promptInfluencer(reader *bufio.Reader) (*roster.Influencer, error) {
	fmt.Println("=== Adding New Influencer ===")

	name := promptLine(reader, "Enter influencer name: ")
	if name == "" {
		return nil, ErrNameRequired
	}

	platforms := socialblade.Platforms()
	handles := make(map[socialblade.Platform]string)

	// First platform, then offer to reuse the same handle everywhere
	first := promptHandle(reader, platforms[0])
	if first != "" {
		handles[platforms[0]] = first

		sameForAll := promptLine(reader, "Use this handle for all platforms? (y/N): ")
		if strings.EqualFold(sameForAll, "y") {
			for _, p := range platforms[1:] {
				handles[p] = first
			}

			return roster.New(name, handles), nil
		}
	}

	for _, p := range platforms[1:] {
		if handle := promptHandle(reader, p); handle != "" {
			handles[p] = handle
		}
	}

	if len(handles) == 0 {
		return nil, ErrHandleRequired
	}

	return roster.New(name, handles), nil
}

// promptHandle asks for one platform handle, confirming before accepting.
// An empty answer skips the platform.
func promptHandle(reader *bufio.Reader, p socialblade.Platform) string {
	for {
		handle := promptLine(reader, fmt.Sprintf("Enter %s handle (press Enter to skip): ", p))
		if handle == "" {
			return ""
		}

		confirm := promptLine(reader, fmt.Sprintf("Is '%s' correct for %s? (y/n): ", handle, p))
		if strings.EqualFold(confirm, "y") {
			return handle
		}
	}
}

// promptSelection lists the influencers by number and asks until a valid
// number is entered.
func promptSelection(reader *bufio.Reader, influencers []*roster.Influencer) *roster.Influencer {
	fmt.Println("\nAvailable influencers:")

	for i, inf := range influencers {
		fmt.Printf("%d. %s\n", i+1, inf.Name)
	}

	for {
		answer := promptLine(reader, "\nSelect influencer number: ")

		choice, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Println("Please enter a number")
			continue
		}

		if choice < 1 || choice > len(influencers) {
			fmt.Println("Invalid choice")
			continue
		}

		return influencers[choice-1]
	}
}

// promptHandleUpdates shows the influencer's current handles and collects
// replacements. An empty answer keeps the current handle.
func promptHandleUpdates(
	reader *bufio.Reader, inf *roster.Influencer,
) map[socialblade.Platform]string {
	fmt.Printf("\nCurrent handles for %s:\n", inf.Name)

	for _, p := range socialblade.Platforms() {
		current := inf.Handle(p)
		if current == "" {
			current = "Not set"
		}

		fmt.Printf("%s: %s\n", p, current)
	}

	updates := make(map[socialblade.Platform]string)

	fmt.Println("\nEnter new handles (press Enter to keep current):")

	for _, p := range socialblade.Platforms() {
		if handle := promptLine(reader, fmt.Sprintf("%s: ", p)); handle != "" {
			updates[p] = handle
		}
	}

	return updates
}

func promptLine(reader *bufio.Reader, label string) string {
	fmt.Print(label)

	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}
