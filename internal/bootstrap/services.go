// Package bootstrap wires the generation services from configuration. Both
// the API server and brandctl build on it.
package bootstrap

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"

	"brandstudio/internal/drive"
	"brandstudio/internal/infra"
	"brandstudio/internal/pipeline"
	"brandstudio/internal/profile"
	"brandstudio/internal/providers/gemini"
	"brandstudio/internal/resilience"
	"brandstudio/internal/storage"
)

// Services is the assembled object graph.
type Services struct {
	Config       *infra.Config
	Logger       infra.Logger
	Profiles     *profile.Session
	Gemini       *gemini.Client
	Pipeline     *pipeline.Pipeline
	Orchestrator *pipeline.Orchestrator
	Analyzer     *pipeline.Analyzer
	Drive        *drive.Lifecycle
	DriveOAuth   *oauth2.Config
	// Exporter is Drive when configured, the local file store otherwise.
	Exporter pipeline.Exporter

	closers []func()
}

// Build connects the profile store and the generation client. consent may be
// nil when Drive consent is handled over HTTP.
func Build(ctx context.Context, cfg *infra.Config, logger infra.Logger, consent drive.Consent) (*Services, error) {
	s := &Services{Config: cfg, Logger: logger}

	store, err := s.openStore(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Profiles = profile.OpenSession(ctx, store, logger)

	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:         cfg.GeminiAPIKey,
		BaseURL:        cfg.GeminiBaseURL,
		ReasoningModel: cfg.GeminiReasoningModel,
		ImageModel:     cfg.GeminiImageModel,
		Logger:         &logger,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Gemini = client

	strategyPolicy := resilience.DefaultPolicy.WithInitialDelay(cfg.RetryInitialDelay)
	strategyPolicy.Name = "strategy"
	renderPolicy := resilience.RenderPolicy.WithInitialDelay(cfg.RetryInitialDelay)

	resolver := pipeline.NewResolver(client, strategyPolicy, logger)
	renderer := pipeline.NewRenderer(client, renderPolicy, logger)
	s.Pipeline = pipeline.New(resolver, renderer, logger)
	s.Analyzer = pipeline.NewAnalyzer(client, resilience.DefaultPolicy.WithInitialDelay(cfg.RetryInitialDelay), logger)

	if err := s.wireExport(consent); err != nil {
		s.Close()
		return nil, err
	}
	s.Orchestrator = pipeline.NewOrchestrator(renderer, logger,
		pipeline.WithSlideInterval(cfg.StorySlideInterval),
		pipeline.WithExporter(s.Exporter),
	)

	reasoning, image := client.Models()
	logger.Info().
		Str("profile_store", cfg.ProfileStore).
		Str("reasoning_model", reasoning).
		Str("image_model", image).
		Bool("drive", s.DriveOAuth != nil).
		Msg("services ready")
	return s, nil
}

func (s *Services) openStore(ctx context.Context) (profile.Store, error) {
	cfg := s.Config
	switch cfg.ProfileStore {
	case infra.ProfileStorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		store := profile.NewPostgresStore(infra.NewSQLRunner(pool, s.Logger))
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate profile table: %w", err)
		}
		return store, nil
	case infra.ProfileStoreMongo:
		client, err := profile.ConnectMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { disconnect(client) })
		return profile.NewMongoStore(client.Database(cfg.MongoDatabase)), nil
	default:
		return profile.NewMemoryStore(), nil
	}
}

func (s *Services) wireExport(consent drive.Consent) error {
	cfg := s.Config
	s.Drive = drive.NewLifecycle(consent, s.Logger)

	clientID := cfg.DriveClientID
	if clientID == "" {
		clientID = s.Profiles.Current().DriveClientID
	}
	s.Drive.Initialize(clientID)

	if clientID != "" && cfg.DriveClientSecret != "" {
		s.DriveOAuth = drive.OAuthConfig(clientID, cfg.DriveClientSecret, cfg.DriveRedirectURL)
		s.Exporter = drive.NewSessionExporter(s.Drive, drive.NewExporter(drive.ExporterOptions{
			FolderID: cfg.DriveFolderID,
			Logger:   s.Logger,
		}))
		return nil
	}

	files, err := storage.NewFileStore(cfg.ExportDir, cfg.ExportBaseURL)
	if err != nil {
		return err
	}
	s.Exporter = files
	return nil
}

// Close releases database connections.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func disconnect(client *mongo.Client) {
	_ = client.Disconnect(context.Background())
}
