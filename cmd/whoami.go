package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkhoatd/redmine-tracker/internal/config"
	"github.com/mkhoatd/redmine-tracker/internal/redmine"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the Redmine account the API key belongs to",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	client := redmine.NewClient(redmine.Config{
		Endpoint: cfg.Redmine.Endpoint,
		APIKey:   cfg.Redmine.APIKey,
	})

	user, err := client.CurrentUser(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s (%s)\n", user.Name(), user.Login)
	if user.Mail != "" {
		fmt.Println(user.Mail)
	}
	fmt.Println(cfg.Redmine.Endpoint)
	return nil
}
