package rangestream

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/always-cache/range-stream/journal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Routes holds the paths the router serves.
type Routes struct {
	// Media endpoint. Defaults to /watch.
	Watch string
	// Static page. Defaults to /index.
	Index string
	// Journal statistics. Defaults to /stats; only served with a journal.
	Stats string
}

func (r Routes) withDefaults() Routes {
	if r.Watch == "" {
		r.Watch = "/watch"
	}
	if r.Index == "" {
		r.Index = "/index"
	}
	if r.Stats == "" {
		r.Stats = "/stats"
	}
	return r
}

// recentEntries is how many journal entries the stats endpoint returns.
const recentEntries = 20

// NewRouter wires the media endpoint, the static page and, if j is not nil,
// the journal and its statistics endpoint.
func NewRouter(routes Routes, streamer *Streamer, page *StaticResponder, j journal.Provider, logger zerolog.Logger) chi.Router {
	routes = routes.withDefaults()

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RequestIDHandler("req", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("ip"))
	r.Use(hlog.UserAgentHandler("ua"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Str("range", r.Header.Get("Range")).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Sent response to client")
	}))
	r.Use(middleware.Recoverer)

	var media http.Handler = streamer
	if j != nil {
		media = journal.Middleware(j)(streamer)
		r.Get(routes.Stats, statsHandler(j))
	}
	r.Method(http.MethodGet, routes.Watch, media)
	r.Method(http.MethodHead, routes.Watch, media)

	r.Method(http.MethodGet, routes.Index, page)
	r.Method(http.MethodHead, routes.Index, page)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, routes.Index, http.StatusFound)
	})

	return r
}

type stats struct {
	Summary journal.Summary `json:"summary"`
	Recent  []journal.Entry `json:"recent"`
}

func statsHandler(j journal.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := hlog.FromRequest(r)
		sum, err := j.Summary()
		if err != nil {
			logger.Error().Err(err).Msg("Could not read journal summary")
			http.Error(w, "could not read journal", http.StatusInternalServerError)
			return
		}
		recent, err := j.Recent(recentEntries)
		if err != nil {
			logger.Error().Err(err).Msg("Could not read journal entries")
			http.Error(w, "could not read journal", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats{Summary: sum, Recent: recent}); err != nil {
			logger.Debug().Err(err).Msg("Could not write stats")
		}
	}
}
