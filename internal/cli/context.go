// Package cli holds the context shared by the kong commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/reto21d/internal/app"
	"github.com/julianstephens/reto21d/internal/backup"
	"github.com/julianstephens/reto21d/internal/logger"
	"github.com/julianstephens/reto21d/internal/metrics"
	"github.com/julianstephens/reto21d/internal/notifier"
	"github.com/julianstephens/reto21d/internal/storage"
	"github.com/julianstephens/reto21d/internal/storage/sqlite"
	"github.com/julianstephens/reto21d/internal/utils"
)

type Context struct {
	Ctx      context.Context
	Store    storage.Provider
	Location *time.Location
	Clock    utils.Clock
	Latency  time.Duration
	// PersistState is on unless the user asked for a seed-only session
	PersistState bool
	Notifier     notifier.Notifier
	Metrics      *metrics.Metrics
	Out          io.Writer

	app *app.App
}

func (c *Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) Context() context.Context {
	return c.context()
}

// App loads the store and builds the application on first use
func (c *Context) App() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	if err := c.Store.Load(); err != nil {
		return nil, err
	}
	n := c.Notifier
	if n == nil {
		n = notifier.NewTray()
	}
	a, err := app.New(c.context(), app.Config{
		KV:           c.Store,
		Clock:        c.Clock,
		Location:     c.Location,
		Latency:      c.Latency,
		PersistState: c.PersistState,
		Notifier:     n,
		Metrics:      c.Metrics,
	})
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// Close persists the application state, if one was built, and closes the store
func (c *Context) Close() error {
	if c.app != nil {
		c.app.Close(c.context())
		c.app = nil
	}
	return c.Store.Close()
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// IsSQLite reports whether the store is a local SQLite file
func (c *Context) IsSQLite() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// Backups returns the snapshot manager of a SQLite store, or nil
func (c *Context) Backups() *backup.Manager {
	if !c.IsSQLite() {
		return nil
	}
	return backup.NewManager(c.Store.GetConfigPath(), nil)
}

// PerformAutomaticBackup snapshots a SQLite store and only logs failures
func (c *Context) PerformAutomaticBackup() {
	mgr := c.Backups()
	if mgr == nil {
		return
	}
	if _, err := os.Stat(c.Store.GetConfigPath()); err != nil {
		return
	}
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
