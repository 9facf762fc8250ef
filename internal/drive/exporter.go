package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"brandstudio/internal/domain"
)

// Exporter uploads files to Google Drive with a caller supplied credential.
type Exporter struct {
	base     *http.Client
	endpoint string
	folderID string
	logger   zerolog.Logger
}

// ExporterOptions configures an Exporter. Endpoint overrides the API base URL.
type ExporterOptions struct {
	HTTPClient *http.Client
	Endpoint   string
	FolderID   string
	Logger     zerolog.Logger
}

func NewExporter(opts ExporterOptions) *Exporter {
	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	return &Exporter{base: base, endpoint: strings.TrimSpace(opts.Endpoint), folderID: strings.TrimSpace(opts.FolderID), logger: opts.Logger}
}

// Upload stores file in Drive and returns its id and view link.
func (e *Exporter) Upload(ctx context.Context, cred domain.DriveCredential, file domain.ExportFile) (*domain.ExportResult, error) {
	if strings.TrimSpace(cred.Token) == "" {
		return nil, domain.ErrAuthRequired
	}
	transport := e.base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client := &http.Client{
		Timeout: e.base.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.Token, Expiry: cred.Expiry}),
			Base:   transport,
		},
	}
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if e.endpoint != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(e.endpoint, "/")+"/"))
	}
	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive: create service: %w", err)
	}

	meta := &drivev3.File{Name: file.Name, MimeType: file.MIMEType}
	if e.folderID != "" {
		meta.Parents = []string{e.folderID}
	}
	created, err := svc.Files.Create(meta).
		Media(bytes.NewReader(file.Data), googleapi.ContentType(file.MIMEType)).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyDriveError(err)
	}
	e.logger.Info().Str("file_id", created.Id).Str("name", file.Name).Int("bytes", len(file.Data)).Msg("drive upload completed")
	return &domain.ExportResult{ID: created.Id, ViewLink: created.WebViewLink}, nil
}

func classifyDriveError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return &domain.ServiceError{Kind: domain.KindPermanent, Message: "drive upload failed: " + err.Error(), Err: err}
	}
	kind := domain.KindPermanent
	switch {
	case gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden:
		kind = domain.KindAuthorization
		err = errors.Join(domain.ErrAuthorization, err)
	case gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500:
		kind = domain.KindTransient
	}
	return &domain.ServiceError{Kind: kind, Code: gerr.Code, Message: "drive upload failed: " + gerr.Message, Err: err}
}

// SessionExporter uploads with whatever credential the lifecycle holds.
type SessionExporter struct {
	lifecycle *Lifecycle
	exporter  *Exporter
}

func NewSessionExporter(lifecycle *Lifecycle, exporter *Exporter) *SessionExporter {
	return &SessionExporter{lifecycle: lifecycle, exporter: exporter}
}

// Upload fails with domain.ErrAuthRequired when no valid credential is held.
// A rejected credential is dropped so the next call asks for consent.
func (s *SessionExporter) Upload(ctx context.Context, file domain.ExportFile) (*domain.ExportResult, error) {
	cred, ok := s.lifecycle.ValidToken()
	if !ok {
		return nil, fmt.Errorf("%w: connect Google Drive first", domain.ErrAuthRequired)
	}
	res, err := s.exporter.Upload(ctx, cred, file)
	if err != nil && domain.IsAuthorization(err) {
		s.lifecycle.Revoke()
	}
	return res, err
}
