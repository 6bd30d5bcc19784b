package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/htran/stitchcount/internal/app"
	"github.com/htran/stitchcount/internal/engine"
	"github.com/htran/stitchcount/internal/model"
	"github.com/htran/stitchcount/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stitchcount: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening project store: %w", err)
	}
	defer st.Close()

	sink := app.NewSink()
	eng := engine.New(st, sink.Notify)

	if err := eng.RefreshProjects(ctx); err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	resumeSession(ctx, st, eng, sink)

	p := tea.NewProgram(app.New(eng, sink), tea.WithAltScreen())

	interval := time.Duration(cfg.TickIntervalSec) * time.Second
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				p.Send(app.TickMsg{Now: now})
			case <-done:
				return
			}
		}
	}()

	_, err = p.Run()
	close(done)
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// resumeSession restores the project that was active when the app last
// exited. A stale pointer falls back to the fresh default project the
// engine starts with.
func resumeSession(ctx context.Context, st store.Store, eng *engine.Engine, sink *app.Sink) {
	sess, err := st.LoadSession(ctx)
	if err != nil || sess.LastActiveProjectID == "" {
		return
	}

	p, err := st.GetProject(ctx, sess.LastActiveProjectID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return
		}
		// The remembered project was deleted out from under us.
		saved := eng.Snapshot().Saved
		if len(saved) == 0 {
			return
		}
		p = saved[0]
	}

	eng.SetActiveProject(ctx, p)

	if sess.WasUnsaved {
		sink.Notify(model.Notification{
			Message:   "Previous session ended with unsaved changes.",
			Severity:  model.SeverityInfo,
			CreatedAt: time.Now(),
		})
	}
}
