package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brandstudio/internal/domain"
)

func (c *cli) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or analyze the brand profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the active brand profile",
		RunE: func(*cobra.Command, []string) error {
			p := c.services.Profiles.Current()
			p.ReferenceImages = summarizeRefs(p.ReferenceImages)
			return c.printJSON(p)
		},
	})

	var (
		images []string
		apply  bool
	)
	analyze := &cobra.Command{
		Use:   "analyze",
		Short: "Derive visual style and product description from brand images",
		RunE: func(cmd *cobra.Command, _ []string) error {
			current := c.services.Profiles.Current()
			refs := current.ReferenceImages
			if len(images) > 0 {
				loaded, err := readImages(images)
				if err != nil {
					return err
				}
				refs = make([]domain.ReferenceImage, 0, len(loaded))
				for _, img := range loaded {
					refs = append(refs, domain.NewReferenceImage(img.Data, img.MIMEType))
				}
			}
			analysis, err := c.services.Analyzer.Analyze(cmd.Context(), refs)
			if err != nil {
				return err
			}
			if err := c.printJSON(analysis); err != nil {
				return err
			}
			if apply {
				if _, err := c.services.Profiles.Save(cmd.Context(), analysis.ApplyTo(current)); err != nil {
					return fmt.Errorf("save profile: %w", err)
				}
				fmt.Fprintln(c.out, "profile updated")
			}
			return nil
		},
	}
	analyze.Flags().StringSliceVar(&images, "image", nil, "brand image (repeatable); defaults to the profile reference images")
	analyze.Flags().BoolVar(&apply, "apply", false, "save the result into the profile")
	cmd.AddCommand(analyze)
	return cmd
}

// summarizeRefs drops image payloads so the profile prints readably.
func summarizeRefs(refs []domain.ReferenceImage) []domain.ReferenceImage {
	out := make([]domain.ReferenceImage, len(refs))
	for i, r := range refs {
		out[i] = domain.ReferenceImage{MIMEType: r.MIMEType, Data: fmt.Sprintf("<%d base64 chars>", len(r.Data))}
	}
	return out
}
