package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"brandstudio/internal/http/handlers"
	"brandstudio/internal/middleware"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts RouterOptions) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/profile", app.GetProfile)
		r.Put("/profile", app.PutProfile)

		r.Route("/drive", func(r chi.Router) {
			r.Get("/status", app.DriveStatus)
			r.Get("/authorize", app.DriveAuthorize)
			r.Get("/callback", app.DriveCallback)
		})

		r.Get("/requests/{id}", app.GetRequest)
		r.Post("/requests/{id}/reset", app.ResetRequest)
		r.Get("/stories/{id}", app.GetStory)
		r.Get("/stories/{id}/archive", app.StoryArchive)

		// Routes that call the generation service share one rate limit.
		r.Group(func(r chi.Router) {
			if opts.RateLimitPerMin > 0 {
				r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
			}
			r.Post("/profile/analyze", app.AnalyzeProfile)
			r.Post("/strategy", app.Strategy)
			r.Post("/render", app.Render)
			r.Post("/requests", app.SubmitRequest)
			r.Post("/stories", app.CreateStory)
			r.Post("/slides", app.CreateSlide)
			r.Get("/slides/quick", app.QuickSlide)
		})
	})

	return r
}
