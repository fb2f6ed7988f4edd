package tether

import (
	"github.com/colonyops/tether/internal/core/config"
	"github.com/colonyops/tether/internal/core/todo"
	"github.com/colonyops/tether/internal/github"
	"github.com/rs/zerolog"
)

// App is the central entry point for tether operations. Commands consume App
// instead of cherry-picking raw dependencies.
type App struct {
	List   *ListService
	Ops    *IssueOpService
	Config *config.Config
}

// NewApp wires the reconciliation core from configuration. client may be nil
// when the GitHub integration is disabled; the list service then skips all
// remote calls.
func NewApp(cfg *config.Config, store todo.Store, client github.Client, log zerolog.Logger) *App {
	var ops *IssueOpService
	if client != nil {
		ops = NewIssueOpService(client, cfg.GitHub.Owner, cfg.GitHub.Repo, log)
	}

	return &App{
		List:   NewListService(store, ops, log),
		Ops:    ops,
		Config: cfg,
	}
}
