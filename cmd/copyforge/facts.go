package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/copyforge/copyforge/internal/facts"
)

func factsCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "facts <file>",
		Short: "Extract a fact inventory from source material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(workDir)
			if err != nil {
				return err
			}
			client, err := newClient(cfg)
			if err != nil {
				return err
			}

			inv, err := facts.NewEngine(client).Extract(cmd.Context(), string(raw))
			if err != nil {
				return fmt.Errorf("extract facts: %w", err)
			}
			data, err := json.MarshalIndent(inv, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if outPath == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write inventory: %w", err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%d facts, %d gaps)\n", outPath, len(inv.AllFacts), len(inv.UnknownGaps))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the inventory JSON to this path instead of stdout")
	return cmd
}
