package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/propship/internal/domain"
	"github.com/bft-labs/propship/internal/ports"
	"github.com/bft-labs/propship/internal/props"
	"github.com/bft-labs/propship/internal/retry"
	"github.com/bft-labs/propship/pkg/log"
)

// Defaults for WatcherConfig.
const (
	DefaultExtension   = "properties"
	DefaultGracePeriod = 100 * time.Millisecond
)

// WatcherConfig holds the watcher settings.
type WatcherConfig struct {
	// Dir is the directory to watch.
	Dir string
	// Extension is the data-file extension, without the leading dot.
	Extension string
	// GracePeriod is the pause between a create event and reading the file.
	GracePeriod time.Duration
}

// Watcher ships every data file created in a directory.
type Watcher struct {
	cfg    WatcherConfig
	filter *props.KeyFilter
	logger log.Logger

	fsw       *fsnotify.Watcher
	closeOnce sync.Once
}

// NewWatcher starts watching cfg.Dir. Events are only consumed once Run is
// called.
func NewWatcher(cfg WatcherConfig, filter *props.KeyFilter, logger log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	cfg.Extension = strings.TrimPrefix(cfg.Extension, ".")
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	if cfg.GracePeriod < 0 {
		cfg.GracePeriod = 0
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(cfg.Dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", cfg.Dir, err)
	}

	return &Watcher{
		cfg:    cfg,
		filter: filter,
		logger: logger,
		fsw:    fsw,
	}, nil
}

// Run handles create events until the watcher is closed or ctx is cancelled.
// Files are processed one at a time.
func (w *Watcher) Run(ctx context.Context, sender ports.RecordSender) error {
	defer w.Close()

	w.logger.Info("watching directory",
		log.String("dir", w.cfg.Dir),
		log.String("extension", w.cfg.Extension),
		log.String("filter", w.filter.Pattern()),
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			err := w.process(ctx, event.Name, sender)
			if err != nil && ctx.Err() == nil && !errors.Is(err, domain.ErrEmptyRecordSet) {
				w.logger.Error("failed to ship file", log.String("file", filepath.Base(event.Name)), log.Err(err))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", log.Err(err))
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

// process ships one created file. The source is removed only after a
// successful send. A file left empty by the filter yields
// domain.ErrEmptyRecordSet.
func (w *Watcher) process(ctx context.Context, path string, sender ports.RecordSender) error {
	name := filepath.Base(path)
	w.logger.Info("file created", log.String("file", name))

	if filepath.Ext(name) != "."+w.cfg.Extension {
		stats.FileSkipped("extension")
		w.logger.Debug("ignoring file with other extension", log.String("file", name))
		return nil
	}

	if err := retry.Sleep(ctx, w.cfg.GracePeriod); err != nil {
		return err
	}

	rs, err := props.ParseFile(path)
	if err != nil {
		stats.FileFailed("read")
		return err
	}
	parsed := rs.Len()

	if w.filter.Apply(rs).Empty() {
		stats.FileSkipped("empty")
		w.logger.Warn("no entries left after filtering, keeping file",
			log.String("file", name),
			log.Int("parsed", parsed),
		)
		return fmt.Errorf("%s: %w", name, domain.ErrEmptyRecordSet)
	}

	if err := sender.Send(ctx, rs); err != nil {
		stats.FileFailed("send")
		return err
	}
	stats.FileSent()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		stats.FileFailed("remove")
		return fmt.Errorf("remove %s: %w", name, err)
	}

	w.logger.Info("shipped file",
		log.String("file", name),
		log.Int("entries", rs.Len()),
		log.Int("parsed", parsed),
	)
	return nil
}
