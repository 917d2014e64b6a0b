package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdant-ai/verdant/internal/wizard"
)

var initForce bool

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter configuration file interactively",
		Args:  cobra.NoArgs,
		RunE:  initCommandE,
	}

	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing configuration file")

	return cmd
}

func initCommandE(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	answers, err := wizard.Run(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	content, err := wizard.GenerateConfig(answers)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	fmt.Printf("Configuration written to %s\n", configPath)
	fmt.Println("Try it: verdant compare \"write a function that reverses a string\"")
	return nil
}
