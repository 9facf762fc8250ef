package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"brandstudio/internal/domain"
)

func (a *App) GetProfile(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Profiles.Current())
}

func (a *App) PutProfile(w http.ResponseWriter, r *http.Request) {
	var p domain.BrandProfile
	if !a.decode(w, r, &p) {
		return
	}
	for i, ref := range p.ReferenceImages {
		if _, err := ref.Bytes(); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "reference image "+strconv.Itoa(i+1)+" is not valid base64")
			return
		}
	}
	saved, err := a.Profiles.Save(r.Context(), p)
	if err != nil {
		a.Logger.Error().Err(err).Msg("profile save failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save profile")
		return
	}
	if a.Drive != nil && saved.DriveClientID != "" {
		a.Drive.Initialize(saved.DriveClientID)
	}
	a.json(w, http.StatusOK, saved)
}

type analyzeRequest struct {
	Images []domain.ReferenceImage `json:"images"`
	Apply  bool                    `json:"apply"`
}

// AnalyzeProfile derives visual style and product copy from brand images.
// Without images in the body the profile's reference images are used.
func (a *App) AnalyzeProfile(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	current := a.Profiles.Current()
	refs := req.Images
	if len(refs) == 0 {
		refs = current.ReferenceImages
	}
	analysis, err := a.Analyzer.Analyze(r.Context(), refs)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	body := map[string]any{"analysis": analysis}
	if req.Apply {
		saved, err := a.Profiles.Save(r.Context(), analysis.ApplyTo(current))
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to save profile")
			return
		}
		body["profile"] = saved
	}
	a.json(w, http.StatusOK, body)
}
