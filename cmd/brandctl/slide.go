package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brandstudio/internal/domain"
	"brandstudio/internal/prompt"
)

func (c *cli) slideCmd() *cobra.Command {
	var (
		topic, kind, text, brief, out string
		printPrompt                   bool
	)
	cmd := &cobra.Command{
		Use:   "slide",
		Short: "Compile and render a single story slide",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := domain.ParseSlideType(kind)
			if err != nil {
				return err
			}
			spec := prompt.DefaultSlide(topic, t)
			if text != "" {
				spec.TextCopy = text
			}
			if brief != "" {
				spec.VisualBrief = brief
			}
			profile := c.services.Profiles.Current()
			if printPrompt {
				directive, err := prompt.CompileSlide(profile, spec)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, directive)
				return nil
			}
			slide, err := c.services.Orchestrator.RenderSlide(cmd.Context(), profile, spec)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("slide_%02d_%s.png", slide.Index, slide.Type)
			}
			if err := writeFile(out, slide.Image.Data); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s slide saved: %s\n", prompt.SlideLabel(slide.Type), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", prompt.DefaultTopic, "story topic")
	cmd.Flags().StringVar(&kind, "type", string(domain.SlideHook), "slide type: hook, setup, bridge, evidence, cta")
	cmd.Flags().StringVar(&text, "text", "", "copy rendered on the slide, verbatim")
	cmd.Flags().StringVar(&brief, "brief", "", "visual brief")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	cmd.Flags().BoolVar(&printPrompt, "print-prompt", false, "print the compiled directive instead of rendering")
	return cmd
}
