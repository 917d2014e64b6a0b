package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the configured providers",
		Args:  cobra.NoArgs,
		RunE:  modelsCommandE,
	}
}

func modelsCommandE(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfigOnly()
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s  %s  %s\n",
		padRight("Name", 20),
		padRight("Kind", 11),
		padRight("Model", 28),
		"API Key")
	fmt.Println("─" + strings.Repeat("─", tableWidth-1))

	for _, p := range cfg.Providers {
		model := p.ModelID
		if model == "" {
			model = "-"
		}
		keyStatus := "not required"
		if p.APIKeyEnv != "" {
			if p.HasAPIKey() {
				keyStatus = "✓ " + p.APIKeyEnv
			} else {
				keyStatus = "✗ " + p.APIKeyEnv + " unset"
			}
		}
		fmt.Printf("%s  %s  %s  %s\n",
			padRight(truncateName(p.Name, 20), 20),
			padRight(string(p.Kind), 11),
			padRight(truncateName(model, 28), 28),
			keyStatus)
	}
	return nil
}
