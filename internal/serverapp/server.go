package serverapp

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskden/internal/api"
	"taskden/internal/auth"
	"taskden/internal/capture"
	"taskden/internal/config"
	"taskden/internal/httpmw"
	"taskden/internal/remind"
	"taskden/internal/store"
)

type Options struct {
	Config *config.Config
	Logger zerolog.Logger
}

// App owns the long-lived pieces behind the handler so the entrypoint
// can shut them down cleanly.
type App struct {
	Handler http.Handler

	stores    *store.Manager
	scheduler *remind.Scheduler
}

func (a *App) Close() error {
	a.scheduler.Stop()
	return a.stores.Close()
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := opts.Config
	logger := opts.Logger

	dataDir := strings.TrimSpace(cfg.DataDir)
	if dataDir == "" {
		dataDir = "data"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskden",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	authRepo, err := auth.NewFileRepo(filepath.Join(dataDir, "auth"))
	if err != nil {
		return nil, err
	}
	authService := auth.NewService(authRepo, []byte(cfg.Auth.JWTSecret), logger)
	authHandler := auth.NewHandler(authService)
	mux.HandleFunc("/api/auth/signup", authHandler.SignUp)
	mux.HandleFunc("/api/auth/signin", authHandler.SignIn)
	mux.HandleFunc("/api/auth/signout", authHandler.SignOut)
	mux.HandleFunc("/api/auth/session", authHandler.Session)

	stores := store.NewManager(filepath.Join(dataDir, "stores"), cfg.StorageBackend, logger)
	resolve := func(r *http.Request) (*store.Store, error) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			return stores.ForUser("default")
		}
		return stores.ForUser(u.ID)
	}

	taskHandler := api.NewTaskHandler(resolve)
	mux.Handle("/api/tasks", authService.RequireAPI(http.HandlerFunc(taskHandler.Root)))
	mux.Handle("/api/tasks/", authService.RequireAPI(http.HandlerFunc(taskHandler.Sub)))

	projectHandler := api.NewProjectHandler(resolve)
	mux.Handle("/api/projects", authService.RequireAPI(http.HandlerFunc(projectHandler.Root)))
	mux.Handle("/api/projects/", authService.RequireAPI(http.HandlerFunc(projectHandler.Sub)))

	prefsHandler := api.NewPrefsHandler(resolve)
	mux.Handle("/api/prefs", authService.RequireAPI(http.HandlerFunc(prefsHandler.Root)))
	mux.Handle("/api/prefs/darkmode", authService.RequireAPI(http.HandlerFunc(prefsHandler.DarkMode)))
	mux.Handle("/api/prefs/tags", authService.RequireAPI(http.HandlerFunc(prefsHandler.Tags)))
	mux.Handle("/api/prefs/tags/", authService.RequireAPI(http.HandlerFunc(prefsHandler.Tags)))
	mux.Handle("/api/prefs/categories", authService.RequireAPI(http.HandlerFunc(prefsHandler.Categories)))
	mux.Handle("/api/prefs/categories/", authService.RequireAPI(http.HandlerFunc(prefsHandler.Categories)))

	var extractor capture.Extractor = capture.Heuristic{}
	if cfg.Capture.APIKey != "" {
		extractor = capture.NewLLMExtractor(cfg.Capture.APIKey, cfg.Capture.BaseURL, cfg.Capture.Model)
	}
	captureHandler := api.NewCaptureHandler(resolve, extractor, logger)
	mux.Handle("/api/capture", authService.RequireAPI(http.HandlerFunc(captureHandler.Root)))

	scheduler := remind.NewScheduler(remind.LogNotifier{Logger: logger})
	reminderHandler := api.NewReminderHandler(scheduler)
	mux.Handle("/api/reminders", authService.RequireAPI(http.HandlerFunc(reminderHandler.Root)))
	mux.Handle("/api/reminders/", authService.RequireAPI(http.HandlerFunc(reminderHandler.Sub)))

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, err := stores.ForUser("default"); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "task storage unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "taskden",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	handler := httpmw.Chain(
		mux,
		httpmw.WithAccessLog(logger),
		httpmw.WithRequestID,
		httpmw.WithRecover(logger),
	)

	return &App{
		Handler:   handler,
		stores:    stores,
		scheduler: scheduler,
	}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
