package main

import (
	"fmt"

	"pdf_compressor/pdf"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	inspectPages string
	inspectJSON  bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.pdf>",
	Short: "Show pages, images and the strategy each tier would use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		doc, err := pdf.Open(args[0])
		if err != nil {
			return err
		}
		defer doc.Close()

		pages, err := pdf.ParsePageSpecifier(inspectPages, doc.PageCount())
		if err != nil {
			return err
		}
		analysis, err := pdf.Analyze(doc, pages)
		if err != nil {
			return err
		}

		if inspectJSON {
			fmt.Fprintln(out, analysis.String())
			return nil
		}

		header := color.New(color.FgCyan, color.Bold)
		header.Fprintf(out, "%s\n", args[0])
		fmt.Fprintf(out, "  Pages: %d   Images: %d (%d unique, %d recompressible)   Size: %s\n",
			analysis.TotalPages, analysis.TotalImages, analysis.UniqueImages, analysis.Recompressible, formatBytes(analysis.FileSize))

		for _, page := range analysis.Pages {
			fmt.Fprintf(out, "  Page %d: %.0f x %.0f pt", page.Number, page.Width, page.Height)
			if page.Rotate != 0 {
				fmt.Fprintf(out, ", rotated %d", page.Rotate)
			}
			fmt.Fprintf(out, ", %d image(s)\n", len(page.Images))
			for _, img := range page.Images {
				line := fmt.Sprintf("    %-16s obj %-5d %5dx%-5d %-12s %s %dbpc",
					img.Path, img.ObjNr, img.Width, img.Height, img.Filter, img.ColorSpace, img.BitsPerComponent)
				if !img.Recompressible {
					color.New(color.FgYellow).Fprintf(out, "%s (not recompressible)\n", line)
					continue
				}
				fmt.Fprintln(out, line)
			}
		}

		header.Fprintln(out, "Strategies")
		for _, tier := range pdf.Tiers {
			s := analysis.Strategies[tier]
			switch s.Branch {
			case pdf.BranchTransform:
				fmt.Fprintf(out, "  %-8s transform, JPEG quality %d, resize %.1f\n", tier, s.Settings.Quality, s.Settings.ResizeRatio)
			default:
				fmt.Fprintf(out, "  %-8s optimizer, preset %s\n", tier, s.Preset)
			}
		}
		for _, r := range analysis.Recommendations {
			color.New(color.FgBlue).Fprintf(out, "→ %s\n", r)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectPages, "pages", "p", "", `page selection, e.g. "1-3,7" (default: all)`)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the analysis as JSON")
}
