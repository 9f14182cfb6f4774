package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haneulpark/habit-diary/internal/config"
	"github.com/haneulpark/habit-diary/internal/database"
	"github.com/haneulpark/habit-diary/internal/models"
	"github.com/haneulpark/habit-diary/internal/services/token"
)

// NewUserCmd creates the user command group
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
		Long:  "Create and list user accounts directly in the database",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserListCmd())

	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var email string
	var password string
	var admin bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			hash, err := token.HashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			user := &models.User{
				ID:           uuid.New(),
				Email:        email,
				PasswordHash: hash,
				IsAdmin:      admin,
			}

			userRepo := database.NewUserRepository(db)
			if err := userRepo.Create(context.Background(), user); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin flag")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			userRepo := database.NewUserRepository(db)
			users, err := userRepo.List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if len(users) == 0 {
				fmt.Println("No users registered")
				return nil
			}

			for _, user := range users {
				role := "user"
				if user.IsAdmin {
					role = "admin"
				}
				fmt.Printf("  - %s  %s  %s  created %s\n",
					user.ID, user.Email, role, user.CreatedAt.Format("2006-01-02"))
			}

			return nil
		},
	}
}

func connectDB() (*database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}
