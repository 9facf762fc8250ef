package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"brandstudio/internal/bootstrap"
	"brandstudio/internal/domain"
	"brandstudio/internal/drive"
	"brandstudio/internal/infra"
)

type cli struct {
	envFile  string
	services *bootstrap.Services
	out      io.Writer
	in       io.Reader
}

func newRootCmd() *cobra.Command {
	c := &cli{out: os.Stdout, in: os.Stdin}
	root := &cobra.Command{
		Use:           "brandctl",
		Short:         "Generate brand-consistent marketing images from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.services != nil {
				c.services.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading configuration")

	root.AddCommand(
		c.generateCmd(),
		c.storyCmd(),
		c.slideCmd(),
		c.profileCmd(),
		c.driveCmd(),
	)
	return root
}

func (c *cli) setup(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_ = godotenv.Load(c.envFile)
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	logger := infra.NewLogger(cfg.AppEnv)
	services, err := bootstrap.Build(ctx, cfg, logger, &drive.CodeConsent{
		ClientSecret: cfg.DriveClientSecret,
		RedirectURL:  cfg.DriveRedirectURL,
		Prompt:       c.promptCode,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

// promptCode prints the consent URL and reads the pasted authorization code.
func (c *cli) promptCode(_ context.Context, authURL string) (string, error) {
	fmt.Fprintf(os.Stderr, "Open this URL, grant access, then paste the code:\n\n  %s\n\ncode: ", authURL)
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readImages(paths []string) ([]domain.Image, error) {
	out := make([]domain.Image, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", p, err)
		}
		out = append(out, domain.Image{Data: data, MIMEType: http.DetectContentType(data)})
	}
	return out, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
