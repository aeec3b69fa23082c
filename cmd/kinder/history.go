package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/kinder/internal/cli"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the shown-candidates history",
	Long:  `Create the history storage and inspect which profiles were delivered to whom.`,
}

var historyProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the history storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, closer, err := cli.OpenHistory(cfg.Storage)
		if err != nil {
			return err
		}
		defer closer.Close()

		ok, err := store.Provisioned(cmd.Context())
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(cmd.OutOrStdout(), "History storage already exists.")
			return nil
		}
		if err := store.Provision(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "History storage created (%s).\n", cfg.Storage.Backend)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "List the candidates delivered to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, closer, err := cli.OpenHistory(cfg.Storage)
		if err != nil {
			return err
		}
		defer closer.Close()

		ids, err := store.ReadHistory(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No candidates shown to user %d.\n", userID)
			return nil
		}
		for _, id := range ids {
			fmt.Fprintf(cmd.OutOrStdout(), "https://vk.com/id%d\n", id)
		}
		return nil
	},
}

var historyLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List users with a history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, closer, err := cli.OpenHistory(cfg.Storage)
		if err != nil {
			return err
		}
		defer closer.Close()

		users, err := store.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
			return nil
		}
		for _, u := range users {
			fmt.Fprintf(cmd.OutOrStdout(), "- %d\n", u)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyProvisionCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyLsCmd)
}
