package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"lorryadmin/internal/adapters/postgres"
	"lorryadmin/internal/domain"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func userCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = os.Getenv("DB_ADMIN_EMAIL")
			}
			if password == "" {
				password = os.Getenv("DB_ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("email and password are required (flags or DB_ADMIN_EMAIL / DB_ADMIN_PASSWORD)")
			}

			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}

			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			user := &domain.User{
				ID:       uuid.NewString(),
				Email:    strings.ToLower(strings.TrimSpace(email)),
				Password: string(hashed),
			}

			err = postgres.NewUserRepository(pool).Create(cmd.Context(), user)
			if errors.Is(err, domain.ErrEmailAlreadyExists) {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s already exists\n", user.Email)
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}
