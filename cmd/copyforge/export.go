package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/copyforge/copyforge/internal/export"
	"github.com/copyforge/copyforge/internal/pipeline"
)

func exportCmd() *cobra.Command {
	var (
		format    string
		outPath   string
		uploadURL string
	)
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Render a stored run's final package as a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad run id %q", args[0])
			}
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(workDir)
			if err != nil {
				return err
			}
			st, _, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			run, err := st.GetRun(ctx, runID)
			if err != nil {
				return err
			}
			artifact, err := st.GetArtifact(ctx, runID, string(pipeline.PhaseFinalPackage))
			if err != nil {
				return fmt.Errorf("run %d has no final package: %w", runID, err)
			}
			var pkg pipeline.FinalPackage
			if err := json.Unmarshal(artifact.Payload, &pkg); err != nil {
				return fmt.Errorf("decode final package: %w", err)
			}

			var (
				doc  []byte
				mime string
			)
			switch format {
			case "md", "markdown":
				doc = export.Document(&pkg, run.Topic)
				mime = "text/markdown"
			case "html":
				if doc, err = export.HTML(&pkg, run.Topic); err != nil {
					return err
				}
				mime = "text/html"
			default:
				return fmt.Errorf("unknown format %q (md or html)", format)
			}

			if uploadURL != "" {
				res := export.Deliver(ctx, &export.HTTPUploader{URL: uploadURL}, doc, mime)
				if res.URL != "" {
					fmt.Fprintln(os.Stdout, res.URL)
					return nil
				}
				doc = res.Inline
			}

			if outPath == "" {
				_, err = os.Stdout.Write(doc)
				return err
			}
			if err := os.WriteFile(outPath, doc, 0o644); err != nil {
				return fmt.Errorf("write document: %w", err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "md", "output format: md or html")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this path instead of stdout")
	cmd.Flags().StringVar(&uploadURL, "upload-url", "", "PUT the document to this presigned URL and print it")
	return cmd
}
