package cli

import (
	"context"
	"log/slog"

	"tasktrackr/internal/api"
	"tasktrackr/internal/app"
	"tasktrackr/internal/backend/rest"
	"tasktrackr/internal/commands"
	"tasktrackr/internal/config"
	"tasktrackr/internal/session"
)

// NewApp builds the production controller: a session persisted in the
// config directory, an HTTP client that drops the session on 401, and the
// REST backend at cfg.APIBase.
func NewApp(ctx context.Context, cfg *config.Config, view app.View, log *slog.Logger) (*app.App, error) {
	sess := session.Open(session.NewFileStore(cfg.TokenPath()), log)

	client := api.New(sess,
		api.WithUnauthorizedHandler(sess.Invalidate),
		api.WithRemoteHost(config.RemoteHost),
		api.WithUserAgent(config.AppName+"/"+commands.Version),
		api.WithLogger(log),
	)
	backend := rest.New(client, cfg)

	return app.New(session.NewManager(sess, backend, log), backend, view, log), nil
}
