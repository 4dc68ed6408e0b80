package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/copyforge/copyforge/internal/immersion"
)

func immerseCmd() *cobra.Command {
	var maxSources int
	cmd := &cobra.Command{
		Use:   "immerse <url>",
		Short: "Build and cache a niche profile from a source URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			st, _, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			timeout := 30 * time.Second
			if cfg.Immersion.TimeoutSeconds > 0 {
				timeout = time.Duration(cfg.Immersion.TimeoutSeconds) * time.Second
			}
			if maxSources <= 0 {
				maxSources = cfg.Immersion.MaxSources
			}
			var researcher immersion.Researcher
			if cfg.Immersion.KeywordAPIURL != "" {
				researcher = immersion.NewHTTPResearcher(cfg.Immersion.KeywordAPIURL, timeout)
			}
			builder := immersion.NewBuilder(immersion.NewHTTPScraper(timeout), researcher, client, maxSources)

			profile, err := builder.Build(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := st.SaveProfile(cmd.Context(), profile); err != nil {
				return err
			}
			fmt.Printf("profile cached for %s\n", profile.SourceURL)
			fmt.Printf("  terminology: %s\n", strings.Join(profile.Terminology, ", "))
			fmt.Printf("  worn-out phrases: %s\n", strings.Join(profile.ForbiddenInNiche, ", "))
			fmt.Printf("  voice: %s\n", strings.Join(profile.VoiceDescriptors, ", "))
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSources, "max-sources", 0, "how many linked pages to pull in")
	return cmd
}
