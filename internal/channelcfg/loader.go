// Package channelcfg loads per-channel default recipient lists from a YAML
// file and reloads them when the file changes.
package channelcfg

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/posbridge/notifier/internal/domain/recipients"
)

// ErrNoPath is returned by NewLoader when no file path is configured.
var ErrNoPath = errors.New("channels config path is empty")

// fileSchema is the on-disk shape of the channels file:
//
//	sms:
//	  default_recipients: ["+15550001111"]
//	email:
//	  default_recipients: ["ops@example.com"]
//	whatsapp:
//	  default_recipients: []
type fileSchema struct {
	SMS      channelSchema `yaml:"sms"`
	Email    channelSchema `yaml:"email"`
	WhatsApp channelSchema `yaml:"whatsapp"`
}

type channelSchema struct {
	DefaultRecipients []string `yaml:"default_recipients"`
}

// Loader serves the current channel defaults and watches the backing file
// for changes. A broken rewrite keeps the last good defaults in place.
type Loader struct {
	path     string
	fallback recipients.Defaults
	logger   *slog.Logger

	mu       sync.RWMutex
	defaults recipients.Defaults

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewLoader reads the file at path and starts watching it. The fallback
// lists serve when the file omits a channel.
func NewLoader(path string, fallback recipients.Defaults, logger *slog.Logger) (*Loader, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		path:     path,
		fallback: fallback,
		logger:   logger,
		defaults: fallback,
	}
	if err := l.reload(); err != nil {
		return nil, fmt.Errorf("load channels config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch channels config: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch channels config: %w", err)
	}
	l.watcher = watcher
	l.done = make(chan struct{})
	go l.watch()
	return l, nil
}

// Defaults returns the current default recipient lists.
func (l *Loader) Defaults() recipients.Defaults {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.defaults
}

// Close stops the file watcher.
func (l *Loader) Close() error {
	if l.watcher == nil {
		return nil
	}
	err := l.watcher.Close()
	<-l.done
	return err
}

func (l *Loader) watch() {
	defer close(l.done)
	for {
		select {
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := l.reload(); err != nil {
				l.logger.Error("channels config reload failed, keeping previous defaults",
					"path", l.path, "error", err)
				continue
			}
			l.logger.Info("channels config reloaded", "path", l.path)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Error("channels config watch error", "path", l.path, "error", err)
		}
	}
}

func (l *Loader) reload() error {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}
	var schema fileSchema
	if err := yaml.Unmarshal(raw, &schema); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	next := recipients.Defaults{
		SMS:      coalesce(schema.SMS.DefaultRecipients, l.fallback.SMS),
		Email:    coalesce(schema.Email.DefaultRecipients, l.fallback.Email),
		WhatsApp: coalesce(schema.WhatsApp.DefaultRecipients, l.fallback.WhatsApp),
	}

	l.mu.Lock()
	l.defaults = next
	l.mu.Unlock()
	return nil
}

func coalesce(list, fallback []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
