package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"brandstudio/internal/domain"
	"brandstudio/internal/pipeline"
	"brandstudio/internal/prompt"
	"brandstudio/pkg/zip"
)

func (c *cli) storyCmd() *cobra.Command {
	var (
		file    string
		topic   string
		outDir  string
		archive bool
	)
	cmd := &cobra.Command{
		Use:     "story",
		Short:   "Render a five-slide story (hook, setup, bridge, evidence, cta)",
		Example: "  brandctl story --file story.json --out stories/\n  brandctl story --topic \"Pool of Siloam\" --zip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := loadStory(file, topic)
			if err != nil {
				return err
			}
			profile := c.services.Profiles.Current()
			if profile.AutoExport {
				c.ensureDrive(cmd)
			}
			result, err := c.services.Orchestrator.RunStory(cmd.Context(), profile, spec)
			if err != nil {
				return err
			}

			assets := make([]zip.Asset, 0, len(result.Slides))
			for i := range result.Slides {
				slide := &result.Slides[i]
				name := pipeline.SlideFileName(result.StoryID, slide)
				assets = append(assets, zip.Asset{Filename: name, MIME: slide.Image.MIMEType, Data: slide.Image.Data})
				if !archive {
					if err := writeFile(filepath.Join(outDir, name), slide.Image.Data); err != nil {
						return err
					}
				}
				fmt.Fprintf(c.out, "%s: %s\n", prompt.SlideLabel(slide.Type), name)
			}
			if archive && len(assets) > 0 {
				data, err := zip.ArchiveAssets(assets, map[string]any{"story_id": result.StoryID, "topic": result.Topic, "errors": result.Errors})
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, "story-"+result.StoryID+".zip")
				if err := writeFile(path, data); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "archive: %s\n", path)
			}
			for _, e := range result.Errors {
				fmt.Fprintln(c.out, e.String())
			}
			for _, exp := range result.Exports {
				fmt.Fprintf(c.out, "exported: %s\n", exp.ViewLink)
			}
			for _, e := range result.ExportErrors {
				fmt.Fprintf(c.out, "export failed, %s\n", e.String())
			}
			if len(result.Slides) == 0 {
				return fmt.Errorf("%w: no slide was generated", domain.ErrProviderFailure)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "story spec JSON (five slides)")
	cmd.Flags().StringVar(&topic, "topic", "", "build a default story for this topic when no file is given")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&archive, "zip", false, "write a single zip archive instead of loose files")
	return cmd
}

func loadStory(file, topic string) (domain.StorySpec, error) {
	if file == "" {
		return prompt.DefaultStory(uuid.NewString(), topic, nil), nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return domain.StorySpec{}, err
	}
	var spec domain.StorySpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return domain.StorySpec{}, fmt.Errorf("%w: %v", domain.ErrInvalidStory, err)
	}
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}
	return spec, nil
}

// ensureDrive asks for consent up front so auto-export does not fail on every slide.
func (c *cli) ensureDrive(cmd *cobra.Command) {
	if c.services.DriveOAuth == nil {
		return
	}
	if _, ok := c.services.Drive.ValidToken(); ok {
		return
	}
	if !c.services.Drive.RequestInteractivePermission(cmd.Context()) {
		fmt.Fprintln(c.out, "drive access not granted, slides will not be exported")
	}
}
