// Package api exposes the agent to the survey UI on the loopback interface.
//
//	GET    /api/v1/health
//	GET    /api/v1/surveys              POST /api/v1/surveys
//	GET    /api/v1/surveys/{id}         PUT  /api/v1/surveys/{id}    DELETE /api/v1/surveys/{id}
//	GET    /api/v1/surveys/{id}/draft   PUT  /api/v1/surveys/{id}/draft
//	POST   /api/v1/surveys/{id}/draft/finalize
//	POST   /api/v1/sync/now|full|batch  GET  /api/v1/sync/status|logs|events
//	DELETE /api/v1/sync/queue
//	GET    /api/v1/schemas              GET  /api/v1/schemas/{name}
package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"sampark/internal/app/client"
	draftAPI "sampark/internal/app/server/api/http/draft"
	healthAPI "sampark/internal/app/server/api/http/health"
	"sampark/internal/app/server/api/http/middleware"
	"sampark/internal/app/server/api/http/middleware/auth"
	"sampark/internal/app/server/api/http/middleware/logger"
	schemaAPI "sampark/internal/app/server/api/http/schema"
	surveyAPI "sampark/internal/app/server/api/http/survey"
	syncAPI "sampark/internal/app/server/api/http/sync"
)

type Handlers struct {
	Health *healthAPI.Handler
	Survey *surveyAPI.Handler
	Draft  *draftAPI.Handler
	Sync   *syncAPI.Handler
	Schema *schemaAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(app *client.App, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	authMW := auth.New(app.Config().LocalAPIToken, log)

	config := huma.DefaultConfig("Sampark Agent API", "1.0.0")
	var security []map[string][]string
	if authMW.Enabled() {
		config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			"bearer": {Type: "http", Scheme: "bearer"},
		}
		security = []map[string][]string{{"bearer": {}}}
	}

	API := humachi.New(mux, config)

	h := handlers(app, authMW, security, log)
	h.Health.SetupRoutes(API)
	h.Survey.SetupRoutes(API)
	h.Draft.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Schema.SetupRoutes(API)

	return mux
}

func handlers(app *client.App, authMW *auth.Auth, security []map[string][]string, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)

	public := middleware.NewContainer().Add(loggerMW.Middleware())
	protected := middleware.NewContainer().Add(authMW.Middleware()).Add(loggerMW.Middleware())

	return &Handlers{
		Health: healthAPI.NewHandler(app.Monitor(), app.Sync(), log, public.Build()),
		Survey: surveyAPI.NewHandler(app.Surveys(), log, protected.Build(), security),
		Draft:  draftAPI.NewHandler(app.Drafts(), log, protected.Build(), security),
		Sync:   syncAPI.NewHandler(app.Sync(), app.Surveys(), log, protected.Build(), security),
		Schema: schemaAPI.NewHandler(app.Schemas(), log, protected.GetAllAndClear(), security),
	}
}
