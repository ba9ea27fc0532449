package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"stratus/internal/api"
	"stratus/internal/config"
	"stratus/internal/service"
	"stratus/internal/session"
	"stratus/internal/ui/confirm"
	"stratus/pkg/formatter"
)

// appContainer holds all the shared dependencies for the application
// This includes configuration, the session gate, service clients, the single
// confirmation dialog, formatters, and the logger
type appContainer struct {
	Config    *config.Manager
	Session   *session.Session
	API       *api.Client
	Auth      *service.AuthService
	Storage   *service.StorageService
	Dialog    *confirm.Dialog
	Presenter *confirm.Presenter
	Formatter *formatter.StorageFormatter
	Logger    *slog.Logger
}

// Creates and initializes a new application container
func newApp(logger *slog.Logger) (*appContainer, error) {
	cfgManager, err := config.NewManager()
	if err != nil {
		return nil, err
	}

	sess := session.New(cfgManager)
	client := api.NewClient(cfgManager.APIURL(), sess, cfgManager.Lang, logger)

	dialog := confirm.NewDialog()
	interactive := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	presenter := confirm.NewPresenter(dialog, os.Stdin, os.Stdout, interactive)

	return &appContainer{
		Config:    cfgManager,
		Session:   sess,
		API:       client,
		Auth:      service.NewAuthService(client, sess, dialog, logger),
		Storage:   service.NewStorageService(client, dialog, logger),
		Dialog:    dialog,
		Presenter: presenter,
		Formatter: formatter.NewStorageFormatter(),
		Logger:    logger,
	}, nil
}

// requireLogin gates every command that talks to the account API.
func (a *appContainer) requireLogin() error {
	if !a.Session.LoggedIn() {
		return fmt.Errorf("not logged in. Use 'stratus login' first")
	}
	return nil
}
