package app

import (
	"context"

	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/gitctx/internal/config"
	"github.com/maxbolgarin/gitctx/internal/extractor"
	"github.com/maxbolgarin/gitctx/internal/gitexec"
	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/server"
)

// App is the main service that wires the executor, the extractor and the
// query API server together
type App struct {
	extractor *extractor.Extractor
	server    *server.Server

	cfg config.Config
	log logze.Logger
}

// New creates the application and registers its shutdown hooks
func New(ctx contem.Context, cfg config.Config) (*App, error) {
	app := &App{
		cfg: cfg,
		log: logze.With("component", "app"),
	}

	if err := app.init(ctx, cfg); err != nil {
		return nil, errm.Wrap(err, "failed to initialize application")
	}

	return app, nil
}

// StartServer starts the query API server
func (a *App) StartServer(ctx context.Context) error {
	if err := a.server.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start api server")
	}
	a.log.Info("api server started", "address", a.cfg.Server.Address)
	return nil
}

// ExtractContext builds one snapshot of the configured repository using
// the configured default options.
func (a *App) ExtractContext(ctx context.Context) (*model.GitContext, error) {
	gc, err := a.extractor.GetContext(ctx, a.extractor.Options())
	if err != nil {
		return nil, errm.Wrap(err, "failed to extract context")
	}
	return gc, nil
}

func (a *App) init(ctx contem.Context, cfg config.Config) (err error) {

	// Prepare the extract section first so the executor gets the final
	// directory, not the raw configured one
	if err = cfg.Extract.PrepareAndValidate(); err != nil {
		return errm.Wrap(err, "failed to prepare extract config")
	}

	// Create the safe subprocess boundary to git
	runner := gitexec.New(cfg.Extract.Dir)

	// Create the snapshot extractor on top of it
	a.extractor, err = extractor.New(cfg.Extract, runner)
	if err != nil {
		return errm.Wrap(err, "failed to create extractor")
	}

	// Create the query API server around the extractor
	a.server, err = server.New(cfg.Server, a.extractor)
	if err != nil {
		return errm.Wrap(err, "failed to create api server")
	}
	ctx.Add(a.server.Stop)

	return nil
}
