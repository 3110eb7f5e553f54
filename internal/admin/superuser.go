package admin

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var errPasswordMismatch = errors.New("passwords do not match")

func newCreateSuperuserCommand(opts *options) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff user with superuser rights",
		Long: `Create a staff user with superuser rights.

The password is prompted for twice unless --password is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if password == "" {
				pw, err := promptNewPassword(out)
				if err != nil {
					return err
				}
				password = pw
			}

			cfg, db, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			us := services.NewUserService(db, newRepoManager(), cfg)
			u, err := us.CreateSuperuser(ctx, email, password)
			if err != nil {
				return fmt.Errorf("create superuser: %w", err)
			}
			fmt.Fprintf(out, "Superuser %s created.\n", u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address of the superuser")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// promptNewPassword reads a password and its confirmation from the
// terminal without echo.
func promptNewPassword(w io.Writer) (string, error) {
	first, err := getPassword(w, "Password: ")
	if err != nil {
		return "", err
	}
	second, err := getPassword(w, "Password (again): ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errPasswordMismatch
	}
	return first, nil
}

func getPassword(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
