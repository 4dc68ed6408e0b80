package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/copyforge/copyforge/internal/rules"
)

func validateCmd() *cobra.Command {
	var (
		channel     string
		catalogPath string
	)
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a text file against a channel's rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			res, err := newValidator(cat).Validate(string(raw), rules.Channel(channel))
			if err != nil {
				return err
			}

			for _, v := range res.Violations {
				fmt.Printf("%-8s %-20s %s (%s)\n", v.Severity, v.Kind, v.Details, v.Location)
			}
			fmt.Printf("score: %d\n", res.Score)
			if !res.IsValid {
				return fmt.Errorf("%s fails the %s rules", args[0], channel)
			}
			fmt.Println("valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "website", "channel rules to check against")
	cmd.Flags().StringVar(&catalogPath, "rules", "", "rule catalog overrides file (YAML)")
	return cmd
}
