package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/simp-lee/genbot/internal/domain"
	"github.com/simp-lee/genbot/internal/module/bot"
	"github.com/simp-lee/genbot/internal/module/document"
	"github.com/simp-lee/genbot/internal/module/user"
)

const (
	demoBotName       = "Demo Store Assistant"
	demoSystemPrompt  = "You are a friendly shop assistant. Answer questions about products, shipping and returns. Keep replies short."
	demoDocumentTitle = "Shipping and returns"
	demoDocument      = "Orders ship within 2 business days. Shipping is free for orders over $50. Unused items can be returned within 30 days for a full refund."
)

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo admin, bot and document when they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			return opts.withDB(cmd.Context(), func(ctx context.Context, db *gorm.DB) error {
				users := user.NewUserRepository(db)
				bots := bot.NewBotRepository(db)
				docs := document.NewDocumentRepository(db)

				admin, err := users.GetByEmail(ctx, email)
				switch {
				case err == nil:
					fmt.Fprintf(out, "Admin %s already exists\n", admin.Email)
				case domain.IsNotFound(err):
					password, err := promptNewPassword(opts.readPassword, out)
					if err != nil {
						return err
					}
					admin, err = user.NewUserService(users).CreateUser(ctx, domain.CreateUserInput{
						Name:     name,
						Email:    email,
						Password: password,
						Role:     domain.RoleAdmin,
					})
					if err != nil {
						return describe(err)
					}
					fmt.Fprintf(out, "Created admin %s\n", admin.Email)
				default:
					return err
				}

				demo, err := findDemoBot(ctx, bots, admin.ID)
				if err != nil {
					return err
				}
				if demo == nil {
					demo, err = bot.NewBotService(bots).CreateBot(ctx, domain.CreateBotInput{
						Name:         demoBotName,
						SystemPrompt: demoSystemPrompt,
						UserID:       admin.ID,
					})
					if err != nil {
						return describe(err)
					}
					fmt.Fprintf(out, "Created bot %q (id %s)\n", demo.Name, demo.ID)
				} else {
					fmt.Fprintf(out, "Bot %q already exists\n", demo.Name)
				}

				existing, err := docs.ListByBot(ctx, demo.ID)
				if err != nil {
					return err
				}
				if len(existing) > 0 {
					fmt.Fprintf(out, "Bot has %d documents\n", len(existing))
					return nil
				}
				doc, err := document.NewDocumentService(docs, bots).CreateDocument(ctx, domain.CreateDocumentInput{
					BotID:   demo.ID,
					Title:   demoDocumentTitle,
					Content: demoDocument,
				})
				if err != nil {
					return describe(err)
				}
				fmt.Fprintf(out, "Created document %q\n", doc.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "admin-email", "admin@example.com", "email of the demo admin")
	cmd.Flags().StringVar(&name, "admin-name", "Admin", "name of the demo admin")
	return cmd
}

// findDemoBot returns the admin's demo bot, or nil when it does not exist.
func findDemoBot(ctx context.Context, bots domain.BotRepository, ownerID string) (*domain.Bot, error) {
	result, err := bots.List(ctx, domain.ListQuery{Search: demoBotName, Limit: 100})
	if err != nil {
		return nil, err
	}
	for i := range result.Data {
		if b := &result.Data[i]; b.Name == demoBotName && b.UserID == ownerID {
			return b, nil
		}
	}
	return nil, nil
}
