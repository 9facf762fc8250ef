package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if a.Pipeline != nil {
		body["authorized"] = a.Pipeline.Authorized()
	}
	if a.Drive != nil {
		body["drive"] = a.Drive.Status()
	}
	a.json(w, http.StatusOK, body)
}
