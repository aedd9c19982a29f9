package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgo/petzadopt/internal/repository"
	"github.com/forgo/petzadopt/internal/seed"
	"github.com/forgo/petzadopt/internal/service"
)

func seedCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load users, pets and campaigns from a YAML file",
		Long: `Load development fixtures.

Users are created first and existing users are kept (admin: true promotes
them). Pets and campaigns go through the same rules as the API, so every
campaign starts with nothing donated.

Examples:
  petzadopt seed seeds/dev.yaml
  petzadopt seed seeds/dev.yaml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := seed.ParseFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Found %d users, %d pets, %d campaigns\n",
				len(doc.Users), len(doc.Pets), len(doc.Campaigns))
			if dryRun {
				fmt.Fprintln(out, "Dry run - no changes made")
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			userRepo := repository.NewUserRepository(db)
			guard := service.NewGuard(service.GuardConfig{Users: userRepo})

			loader := seed.NewLoader(seed.LoaderConfig{
				Users: userRepo,
				Pets: service.NewPetService(service.PetServiceConfig{
					Repo:   repository.NewPetRepository(db),
					Admins: guard,
				}),
				Campaigns: service.NewCampaignService(service.CampaignServiceConfig{
					Repo:   repository.NewCampaignRepository(db),
					Admins: guard,
				}),
				Logger: newLogger(cfg),
			})

			res, err := loader.Load(ctx, doc)
			if res != nil {
				fmt.Fprintf(out, "Created %d users, promoted %d, listed %d pets, opened %d campaigns\n",
					res.UsersCreated, res.UsersPromoted, res.Pets, res.Campaigns)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing anything")

	return cmd
}
