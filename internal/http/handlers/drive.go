package handlers

import (
	"net/http"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"

	"brandstudio/internal/drive"
)

func (a *App) DriveStatus(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"enabled": a.DriveOAuth != nil}
	if a.Drive != nil {
		body["status"] = a.Drive.Status()
	}
	a.json(w, http.StatusOK, body)
}

// DriveAuthorize starts the consent flow. With redirect=false the consent URL
// is returned as JSON instead of a redirect.
func (a *App) DriveAuthorize(w http.ResponseWriter, r *http.Request) {
	if a.DriveOAuth == nil || a.Drive == nil {
		a.error(w, http.StatusServiceUnavailable, "drive_not_configured", "drive export is not configured")
		return
	}
	st, err := drive.NewState()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to start consent")
		return
	}
	a.oauthStates.Set(st, struct{}{}, gocache.DefaultExpiration)
	authURL := a.DriveOAuth.AuthCodeURL(st, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "consent"))
	if r.URL.Query().Get("redirect") == "false" {
		a.json(w, http.StatusOK, map[string]string{"auth_url": authURL})
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (a *App) DriveCallback(w http.ResponseWriter, r *http.Request) {
	if a.DriveOAuth == nil || a.Drive == nil {
		a.error(w, http.StatusServiceUnavailable, "drive_not_configured", "drive export is not configured")
		return
	}
	q := r.URL.Query()
	if msg := q.Get("error"); msg != "" {
		a.error(w, http.StatusForbidden, "consent_denied", msg)
		return
	}
	st := q.Get("state")
	if _, ok := a.oauthStates.Get(st); !ok || st == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown or expired state")
		return
	}
	a.oauthStates.Delete(st)
	tok, err := a.DriveOAuth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		a.Logger.Warn().Err(err).Msg("drive code exchange failed")
		a.error(w, http.StatusBadGateway, "exchange_failed", "failed to exchange authorization code")
		return
	}
	if !a.Drive.Accept(tok) {
		a.error(w, http.StatusBadGateway, "exchange_failed", "authorization server returned no usable token")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": a.Drive.Status()})
}
