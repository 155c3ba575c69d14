package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ludo-technologies/crev/domain"
	"github.com/ludo-technologies/crev/service"
	"github.com/spf13/cobra"
)

func providersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Manage third-party analysis providers",
		Long: `Manage third-party analysis providers.

Providers are configured once and persist across runs. An enabled
provider joins every review started with --third-party.`,
	}

	cmd.AddCommand(providersListCmd())
	cmd.AddCommand(providersSetConfigCmd())
	cmd.AddCommand(providersEnableCmd())
	cmd.AddCommand(providersDisableCmd())
	cmd.AddCommand(providersTestCmd())

	return cmd
}

func providersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := buildRegistry()

			for _, template := range registry.ListAvailable() {
				status := "not configured"
				if _, ok := registry.GetConfig(template.ID); ok {
					status = "configured"
				}
				if registry.IsEnabled(template.ID) {
					status = "enabled"
				}
				fmt.Printf("%-14s %-14s %s\n", template.ID, status, template.Description)
				if len(template.RequiredFields) > 0 {
					fmt.Printf("%-14s required: %s\n", "", strings.Join(template.RequiredFields, ", "))
				}
			}
			return nil
		},
	}
}

func providersSetConfigCmd() *cobra.Command {
	var (
		apiKey   string
		endpoint string
		timeout  int
		retries  int
	)

	cmd := &cobra.Command{
		Use:   "set-config <provider-id>",
		Short: "Configure a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := buildRegistry()

			cfg := domain.ProviderConfig{
				APIKey:        apiKey,
				Endpoint:      endpoint,
				Timeout:       timeout,
				RetryAttempts: retries,
			}
			if !cmd.Flags().Changed("retries") {
				cfg.RetryAttempts = -1
			}

			if err := registry.SetConfig(args[0], cfg); err != nil {
				if vErr, ok := err.(*domain.ValidationError); ok {
					fmt.Printf("Configuration rejected for %s:\n", vErr.ProviderID)
					for _, field := range vErr.Fields {
						fmt.Printf("  %s: %s\n", field.Field, field.Message)
					}
					return &ReviewExitError{Code: 2, Message: ""}
				}
				return err
			}

			fmt.Printf("Configured %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Provider credential")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Provider endpoint URL")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Request timeout in milliseconds (0 = default)")
	cmd.Flags().IntVar(&retries, "retries", 0, "Retry attempts for transient failures")

	return cmd
}

func providersEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <provider-id>",
		Short: "Enable a configured provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := buildRegistry()
			if err := registry.Enable(args[0]); err != nil {
				return err
			}
			fmt.Printf("Enabled %s\n", args[0])
			return nil
		},
	}
}

func providersDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <provider-id>",
		Short: "Disable a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := buildRegistry()
			registry.Disable(args[0])
			fmt.Printf("Disabled %s\n", args[0])
			return nil
		},
	}
}

func providersTestCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "test [provider-id]",
		Short: "Probe provider connectivity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := buildRegistry()
			ctx := context.Background()

			if all {
				executor := service.NewParallelExecutor()
				// Health probes should answer quickly or not at all
				executor.SetTimeout(30 * time.Second)
				statuses, err := registry.TestAllConnections(ctx, executor)
				for id, status := range statuses {
					printHealthStatus(id, status)
				}
				if err != nil {
					return &ReviewExitError{Code: 1, Message: ""}
				}
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("provide a provider id or --all")
			}

			status, err := registry.TestConnection(ctx, args[0])
			if err != nil {
				return err
			}
			printHealthStatus(args[0], status)
			if !status.IsHealthy {
				return &ReviewExitError{Code: 1, Message: ""}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Test every configured provider")
	return cmd
}

func printHealthStatus(id string, status domain.HealthStatus) {
	if status.IsHealthy {
		fmt.Printf("%-14s healthy (%dms)\n", id, status.ResponseTime.Milliseconds())
		return
	}
	fmt.Printf("%-14s unhealthy: %s\n", id, status.ErrorMessage)
}
