package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/ssr/pkg/artifact"
)

// newCheckCmd validates the artifacts a production server would load.
func newCheckCmd() *cobra.Command {
	cfg, cfgErr := loadConfig(nil)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the template and build artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfgErr != nil {
				return cfgErr
			}

			var src artifact.Source = artifact.Dir(cfg.Output)
			if cfg.S3.Bucket != "" {
				s3src, err := artifact.NewS3(cfg.S3)
				if err != nil {
					return err
				}
				src = s3src
			}

			set, err := artifact.Load(cmd.Context(), src, artifact.TemplateFile(cfg.Template))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ok: template %d bytes, bundle %d bytes, manifest %d bytes\n",
				len(set.Template), len(set.Bundle), len(set.ClientManifest))
			return nil
		},
	}
	cfg.bindFlags(cmd.Flags())
	return cmd
}
