package main

import (
	"context"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity and health of the configured graph store",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := buildClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close(context.WithoutCancel(ctx))

	health := client.Health(ctx)
	cmd.Printf("graph store at %s: %s", cfg.Graph.URI, health.State)
	if health.Message != "" {
		cmd.Printf(" (%s)", health.Message)
	}
	cmd.Println()
	return nil
}
