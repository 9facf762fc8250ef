package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brandstudio/internal/pipeline"
	"brandstudio/internal/state"
)

func (c *cli) generateCmd() *cobra.Command {
	var (
		instruction string
		images      []string
		out         string
	)
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Resolve a strategy for an instruction and render one image",
		Example: "  brandctl generate --instruction \"Launch post for the pendant\" --image product.jpg --out post.png",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources, err := readImages(images)
			if err != nil {
				return err
			}
			m := state.NewMachine()
			res, err := c.services.Pipeline.Process(cmd.Context(), m, pipeline.Request{
				Instruction: instruction,
				Sources:     sources,
				Profile:     c.services.Profiles.Current(),
			})
			if err != nil {
				return fmt.Errorf("generation ended in %s: %w", m.State(), err)
			}
			if err := writeFile(out, res.Image.Data); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "platform: %s (%s, %s)\nmode: %s\nsaved: %s\n",
				res.Strategy.Platform, res.Strategy.AspectRatio, res.Strategy.LayoutStyle, res.Mode, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&instruction, "instruction", "", "what to create")
	cmd.Flags().StringSliceVar(&images, "image", nil, "source image to edit (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "output.png", "where to write the rendered image")
	_ = cmd.MarkFlagRequired("instruction")
	return cmd
}
