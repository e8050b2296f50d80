package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bolx/internal/config"
	"bolx/internal/templates"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect template definitions",
	}
	cmd.AddCommand(newTemplatesValidateCmd())
	return cmd
}

func newTemplatesValidateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Decode and validate every template in a folder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if dir == "" {
				dir = cfg.Templates.Dir
			}

			raws, err := templates.DirSource{Dir: dir}.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			bad := 0
			for _, raw := range raws {
				t, err := templates.Decode(raw.Name, raw.Data)
				if err == nil {
					err = templates.Validate(t, cfg.Extraction.RegionOverlapTolerance)
				}
				if err != nil {
					bad++
					fmt.Fprintf(out, "FAIL %s: %v\n", raw.Name, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s (%s v%d, %d pages, %d regions)\n",
					raw.Name, t.ID, t.Version, len(t.Pages), t.RegionCount())
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d templates are invalid", bad, len(raws))
			}
			if len(raws) == 0 {
				return fmt.Errorf("no templates found in %s", dir)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "template folder (default BOLX_TEMPLATES_DIR)")
	return cmd
}
