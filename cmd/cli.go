package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tombola/database"
	"tombola/models"
	"tombola/repository"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Serve()
		},
	}
}

// Serve runs the server until SIGINT or SIGTERM
func Serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return Run(ctx)
}

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.MigrateUp()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid steps %q: %w", args[0], err)
				}
				steps = n
			}
			return database.MigrateDown(steps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := database.MigrateStatus()
			if err != nil {
				return err
			}
			printMigrationStatus(cmd.OutOrStdout(), status)
			return nil
		},
	})

	return cmd
}

func printMigrationStatus(w io.Writer, status *database.MigrationStatus) {
	if !status.Applied {
		fmt.Fprintf(w, "Migrations: %s\n", color.New(color.FgYellow).Sprint("none applied"))
		return
	}
	state := color.New(color.FgGreen).Sprint("clean")
	if status.Dirty {
		state = color.New(color.FgRed).Sprint("DIRTY")
	}
	fmt.Fprintf(w, "Migration version: %d (%s)\n", status.Version, state)
}

// RaffleCmd returns the raffle administration command
func RaffleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "raffle",
		Short: "Administer raffles directly against the database",
	}

	cmd.AddCommand(raffleActionCmd("show <id>", "Show a raffle and its counters", func(ctx context.Context, a *app, w io.Writer, id int64) error {
		raffle, err := a.raffles.Get(ctx, id)
		if err != nil {
			return err
		}
		printRaffle(w, raffle, time.Now())
		return nil
	}))

	cmd.AddCommand(raffleActionCmd("draw <id>", "Draw the winner of an ended raffle", func(ctx context.Context, a *app, w io.Writer, id int64) error {
		result, err := a.draw.Draw(ctx, id)
		if err != nil {
			return err
		}
		printRaffle(w, result.Raffle, time.Now())
		fmt.Fprintf(w, "Winner: %s (participation %d, user %d) out of %d entries\n",
			color.New(color.FgHiMagenta, color.Bold).Sprint(result.Winner.ParticipationNumber),
			result.Winner.ID, result.Winner.UserID, result.Pool)
		return nil
	}))

	cmd.AddCommand(raffleActionCmd("recompute <id>", "Rebuild the raffle counters from the ledger", func(ctx context.Context, a *app, w io.Writer, id int64) error {
		raffle, err := a.raffles.RecomputeStats(ctx, id)
		if err != nil {
			return err
		}
		printRaffle(w, raffle, time.Now())
		return nil
	}))

	cmd.AddCommand(raffleActionCmd("cancel <id>", "Cancel an undrawn raffle", func(ctx context.Context, a *app, w io.Writer, id int64) error {
		raffle, err := a.raffles.Cancel(ctx, id)
		if err != nil {
			return err
		}
		printRaffle(w, raffle, time.Now())
		return nil
	}))

	return cmd
}

type raffleAction func(ctx context.Context, a *app, w io.Writer, id int64) error

func raffleActionCmd(use, short string, action raffleAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid raffle id %q", args[0])
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			return action(ctx, a, cmd.OutOrStdout(), id)
		},
	}
}

// UserCmd returns the user administration command
func UserCmd() *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Administer user records",
	}

	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			role := models.RoleUser
			if admin {
				role = models.RoleAdmin
			}

			user, err := repository.NewUserRepository(a.db).Create(ctx, args[0], role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s) with role %s\n",
				user.ID, user.Username, color.New(color.FgCyan).Sprint(user.Role))
			return nil
		},
	}
	create.Flags().BoolVar(&admin, "admin", false, "Grant the admin role")

	cmd.AddCommand(create)
	return cmd
}

func raffleStatusColor(status models.RaffleStatus) *color.Color {
	switch status {
	case models.RaffleStatusActive:
		return color.New(color.FgGreen)
	case models.RaffleStatusEnded:
		return color.New(color.FgYellow)
	case models.RaffleStatusDrawn:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgRed)
	}
}

func printRaffle(w io.Writer, raffle *models.Raffle, now time.Time) {
	status := raffle.EffectiveStatus(now)
	fmt.Fprintf(w, "Raffle %d - %s [%s]\n", raffle.ID, raffle.Title, raffleStatusColor(status).Sprint(status))
	fmt.Fprintf(w, "   Prize: %d  Price: %d\n", raffle.PrizeAmount, raffle.ParticipationPrice)
	if raffle.MaxParticipants != nil {
		fmt.Fprintf(w, "   Participations: %d / %d\n", raffle.TotalParticipations, *raffle.MaxParticipants)
	} else {
		fmt.Fprintf(w, "   Participations: %d\n", raffle.TotalParticipations)
	}
	fmt.Fprintf(w, "   Revenue: %d\n", raffle.TotalRevenue)
	fmt.Fprintf(w, "   Ends: %s\n", raffle.EndDate.Format(time.RFC3339))
	if raffle.DrawDate != nil {
		fmt.Fprintf(w, "   Drawn: %s\n", raffle.DrawDate.Format(time.RFC3339))
	}
}
