package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/module/user"
)

const timeLayout = "2006-01-02 15:04:05"

func newUsersCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUsersAddCommand(opts), newUsersListCommand(opts))
	return cmd
}

func newUsersAddCommand(opts *rootOptions) *cobra.Command {
	var name, role string

	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Add a user; the password is read from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			password, err := promptNewPassword(opts.readPassword, out)
			if err != nil {
				return err
			}

			return opts.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				svc := user.NewUserService(user.NewUserRepository(db))
				u, err := svc.CreateUser(ctx, domain.CreateUserInput{
					Name:     name,
					Email:    args[0],
					Password: password,
					Role:     domain.Role(role),
				})
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(out, "User %s created with role %s (id %s)\n", u.Email, u.Role, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "role: admin or user")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUsersListCommand(opts *rootOptions) *cobra.Command {
	var q domain.ListQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				svc := user.NewUserService(user.NewUserRepository(db))
				result, err := svc.ListUsers(ctx, q)
				if err != nil {
					return describe(err)
				}

				out := cmd.OutOrStdout()
				if len(result.Data) == 0 {
					fmt.Fprintln(out, "No users found")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tCREATED AT")
				for _, u := range result.Data {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role, u.CreatedAt.Format(timeLayout))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				m := result.Meta
				fmt.Fprintf(out, "Page %d of %d, %d users\n", m.Page, max(m.TotalPages, 1), m.Total)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.Limit, "limit", 20, "users per page (max 100)")
	f.StringVar(&q.Search, "search", "", "match name or email")
	f.StringVar(&q.Sort, "sort", "", "sort field: name, email, role, createdAt or updatedAt")
	f.StringVar(&q.Order, "order", domain.OrderDesc, "sort order: asc or desc")
	return cmd
}

// promptNewPassword asks for a password twice and checks they match.
func promptNewPassword(read PasswordReader, out io.Writer) (string, error) {
	password, err := read("Enter password: ", out)
	if err != nil {
		return "", err
	}
	confirm, err := read("Confirm password: ", out)
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

// describe prefixes an AppError with its wire code.
func describe(err error) error {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) || appErr.Code == domain.CodeInternal {
		return err
	}
	return fmt.Errorf("%s: %w", domain.ErrorCodeName(err), err)
}
