package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/copyforge/copyforge/internal/export"
	"github.com/copyforge/copyforge/internal/facts"
	"github.com/copyforge/copyforge/internal/immersion"
	"github.com/copyforge/copyforge/internal/pipeline"
	"github.com/copyforge/copyforge/internal/rules"
	"github.com/copyforge/copyforge/internal/slop"
)

func generateCmd() *cobra.Command {
	var (
		channel     string
		audience    string
		goal        string
		topic       string
		offer       string
		voice       string
		taskContext string
		proof       []string
		mustInclude []string
		avoid       []string
		targetWords int
		maxWords    int
		attempts    int
		factsFile   string
		profileURL  string
		catalogPath string
		outPath     string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full generation pipeline for one task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(workDir)
			if err != nil {
				return err
			}
			if channel == "" {
				channel = cfg.Defaults.Channel
			}
			if attempts <= 0 {
				attempts = cfg.Defaults.MaxAttempts
			}
			if targetWords <= 0 {
				targetWords = cfg.Defaults.TargetWords
			}
			if audience == "" || goal == "" || topic == "" {
				return fmt.Errorf("--audience, --goal and --topic are required")
			}
			ch := rules.Channel(channel)
			if !ch.Valid() {
				return fmt.Errorf("unknown channel %q", channel)
			}

			cat, err := loadCatalog(catalogPath)
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

			ctx := cmd.Context()

			var inv *facts.Inventory
			engine := facts.NewEngine(client)
			if factsFile != "" {
				raw, err := os.ReadFile(factsFile)
				if err != nil {
					return fmt.Errorf("read facts file: %w", err)
				}
				if inv, err = engine.Extract(ctx, string(raw)); err != nil {
					return fmt.Errorf("extract facts: %w", err)
				}
				log.Info().Int("facts", len(inv.AllFacts)).Msg("fact inventory built")
			}

			var profile *immersion.Profile
			if profileURL != "" {
				profile, err = st.GetProfile(ctx, profileURL)
				if errors.Is(err, sql.ErrNoRows) {
					log.Warn().Str("url", profileURL).Msg("no cached profile, run `copyforge immerse` first; continuing without")
					profile, err = nil, nil
				}
				if err != nil {
					return err
				}
			}

			spec := pipeline.TaskSpec{
				Channel:     ch,
				Audience:    audience,
				Goal:        goal,
				Topic:       topic,
				Offer:       offer,
				Proof:       proof,
				MustInclude: mustInclude,
				Avoid:       avoid,
				Voice:       voice,
				TargetWords: targetWords,
				MaxWords:    maxWords,
				Context:     taskContext,
			}

			runID, err := st.CreateRun(ctx, channel, topic, audience, goal)
			if err != nil {
				return err
			}

			o := pipeline.NewOrchestrator(client, newValidator(cat), cat, engine,
				slop.NewScorer(cat, client), pipeline.Options{Recorder: st, MaxAttempts: attempts})
			res, err := o.Run(ctx, runID, spec, inv, profile)
			if err != nil {
				_ = st.FinishRun(context.WithoutCancel(ctx), runID, "failed", 0, 0, false)
				return err
			}
			meta := res.Package.Meta
			if err := st.FinishRun(ctx, runID, "complete", meta.Score, meta.Attempts, meta.BestEffort); err != nil {
				log.Warn().Err(err).Msg("run result not persisted")
			}

			printSummary(runID, res)
			return writeDocument(res.Package, topic, outPath)
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "delivery channel (website, email, article, social, sales_page, book_chapter)")
	cmd.Flags().StringVar(&audience, "audience", "", "who the piece is for")
	cmd.Flags().StringVar(&goal, "goal", "", "what the piece must achieve")
	cmd.Flags().StringVar(&topic, "topic", "", "what the piece is about")
	cmd.Flags().StringVar(&offer, "offer", "", "the offer being made, if any")
	cmd.Flags().StringVar(&voice, "voice", "", "voice guidance")
	cmd.Flags().StringVar(&taskContext, "context", "", "free-text context for the task")
	cmd.Flags().StringArrayVar(&proof, "proof", nil, "proof point (repeatable)")
	cmd.Flags().StringArrayVar(&mustInclude, "must-include", nil, "element that must appear (repeatable)")
	cmd.Flags().StringArrayVar(&avoid, "avoid", nil, "element to avoid (repeatable)")
	cmd.Flags().IntVar(&targetWords, "target-words", 0, "target length in words")
	cmd.Flags().IntVar(&maxWords, "max-words", 0, "hard maximum length in words")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "regeneration attempt budget")
	cmd.Flags().StringVar(&factsFile, "facts-file", "", "file with source material to ground the piece in")
	cmd.Flags().StringVar(&profileURL, "profile-url", "", "use the cached niche profile built from this URL")
	cmd.Flags().StringVar(&catalogPath, "rules", "", "rule catalog overrides file (YAML)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the markdown document to this path instead of stdout")
	return cmd
}

func printSummary(runID int64, res *pipeline.RunResult) {
	meta := res.Package.Meta
	fmt.Fprintf(os.Stderr, "run %d: score %d, %d attempt(s)", runID, meta.Score, meta.Attempts)
	if meta.BestEffort {
		fmt.Fprintf(os.Stderr, ", best effort with %d open violation(s)", len(meta.Violations))
	}
	fmt.Fprintf(os.Stderr, ", slop %d, %d variant(s)\n", res.Slop.Score, len(res.Package.Variants))
	for _, warn := range res.FactWarnings {
		fmt.Fprintf(os.Stderr, "unsupported claim: %s\n", warn)
	}
}

func writeDocument(pkg *pipeline.FinalPackage, title, outPath string) error {
	doc := export.Document(pkg, title)
	if outPath == "" {
		_, err := os.Stdout.Write(doc)
		return err
	}
	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
	return nil
}
