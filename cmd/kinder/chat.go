package main

import (
	"fmt"

	"github.com/aretw0/kinder"
	"github.com/aretw0/kinder/internal/cli"
	"github.com/aretw0/kinder/internal/config"
	"github.com/aretw0/kinder/pkg/adapters/console"
	"github.com/aretw0/kinder/pkg/adapters/memory"
	"github.com/aretw0/kinder/pkg/adapters/vk"
	"github.com/aretw0/kinder/pkg/ports"
	"github.com/aretw0/kinder/pkg/runner"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot in the terminal",
	Long: `Runs the dialog locally: every line typed is a message from one user and
replies are printed back. With --offline the search uses a generated
directory instead of VK, so no tokens are needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		offline, _ := cmd.Flags().GetBool("offline")
		profiles, _ := cmd.Flags().GetInt("profiles")
		userID, _ := cmd.Flags().GetInt64("user")
		ephemeral, _ := cmd.Flags().GetBool("memory")
		provision, _ := cmd.Flags().GetBool("provision")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if ephemeral {
			cfg.Storage.Backend = config.BackendMemory
		}
		if !cmd.Flags().Changed("log-level") {
			cfg.Log.Level = "warn"
		}

		logger, logCloser, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logCloser.Close()

		signals := runner.NewSignalManager(cmd.Context())
		defer signals.Stop()
		ctx := signals.Context()

		store, storeCloser, err := cli.OpenHistory(cfg.Storage)
		if err != nil {
			return err
		}
		defer storeCloser.Close()
		if err := cli.EnsureProvisioned(ctx, store, provision || ephemeral, logger); err != nil {
			return err
		}

		var directory ports.Directory
		if offline {
			directory = memory.NewSampleDirectory(profiles)
		} else {
			if cfg.VK.UserToken == "" {
				return fmt.Errorf("vk.user_token is required without --offline (%s)", config.EnvName("vk.user_token"))
			}
			opts := []vk.Option{vk.WithVersion(cfg.VK.APIVersion), vk.WithLogger(logger)}
			if cfg.VK.BaseURL != "" {
				opts = append(opts, vk.WithBaseURL(cfg.VK.BaseURL))
			}
			directory = vk.NewDirectory(vk.NewClient(cfg.VK.UserToken, opts...))
		}

		term := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.WithUserID(userID))
		agent, err := kinder.New(store, directory, term,
			kinder.WithLogger(logger),
			kinder.WithMessages(cfg.Messages),
			kinder.WithSearchConfig(cfg.Search.Pipeline()),
		)
		if err != nil {
			return err
		}

		term.PrintBanner()
		err = agent.Run(ctx, term)
		if signals.CheckRace() {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("offline", true, "Search a generated directory instead of VK")
	chatCmd.Flags().Int("profiles", 200, "Number of generated profiles in offline mode")
	chatCmd.Flags().Int64("user", console.LocalUser, "User id to chat as")
	chatCmd.Flags().Bool("memory", false, "Keep the history in memory only")
	chatCmd.Flags().Bool("provision", false, "Create the history storage if it does not exist")
}
