package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stratus/internal/api"
	"stratus/internal/config"
	"stratus/internal/service"
	"stratus/internal/session"
	"stratus/internal/ui/confirm"
	"stratus/pkg/formatter"
)

func newTestApp(t *testing.T) (*appContainer, *bytes.Buffer) {
	t.Helper()

	cfg, err := config.NewManagerAt(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	sess := session.New(cfg)
	require.NoError(t, sess.Login(session.Identity{Token: "tok-1", Username: "alice"}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := api.NewClient("http://localhost:9000", sess, func() string { return "en" }, logger)

	dialog := confirm.NewDialog()
	var out bytes.Buffer
	presenter := confirm.NewPresenter(dialog, strings.NewReader(""), &out, false)

	return &appContainer{
		Config:    cfg,
		Session:   sess,
		API:       client,
		Auth:      service.NewAuthService(client, sess, dialog, logger),
		Storage:   service.NewStorageService(client, dialog, logger),
		Dialog:    dialog,
		Presenter: presenter,
		Formatter: formatter.NewStorageFormatter(),
		Logger:    logger,
	}, &out
}

func subCommand(t *testing.T, parent *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("subcommand %s not found", name)
	return nil
}

func TestCopyConfigWritesPayload(t *testing.T) {
	app, out := newTestApp(t)

	var copied string
	orig := clipboardWrite
	clipboardWrite = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { clipboardWrite = orig })

	cmd := subCommand(t, newStorageCmd(app), "copy-config")
	require.NoError(t, cmd.RunE(cmd, nil))

	assert.Contains(t, copied, `"api": "http://localhost:9000/api/user/upload"`)
	assert.Contains(t, copied, `"apiToken": "tok-1"`)
	assert.Contains(t, out.String(), "copied to clipboard")
}

func TestCopyConfigClipboardFailureFailsCommand(t *testing.T) {
	app, out := newTestApp(t)

	orig := clipboardWrite
	clipboardWrite = func(string) error { return errors.New("no display") }
	t.Cleanup(func() { clipboardWrite = orig })

	cmd := subCommand(t, newStorageCmd(app), "copy-config")
	err := cmd.RunE(cmd, nil)

	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out.String(), "Failed to copy upload config")
	assert.False(t, app.Dialog.IsOpen(), "notification is flushed before the command exits")
}
