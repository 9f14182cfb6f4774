package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/export"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var email string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's routines as CSV",
		Long:  "Export all routines for a user in the spreadsheet CSV format, to a file or stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			ctx := context.Background()

			userRepo := database.NewUserRepository(db)
			user, err := userRepo.GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("failed to find user %s: %w", email, err)
			}

			routineRepo := database.NewRoutineRepository(db)
			routines, err := routineRepo.ListByUser(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to list routines: %w", err)
			}

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", outPath, err)
					}
				}()
				out = f
			}

			if err := export.WriteCSV(out, routines); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}

			if outPath != "" {
				fmt.Printf("Exported %d routines for %s to %s\n", len(routines), email, outPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user to export (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
