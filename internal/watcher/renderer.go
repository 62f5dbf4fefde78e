package watcher

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/zjrosen/typstmath/internal/engine"
	"github.com/zjrosen/typstmath/internal/log"
	"github.com/zjrosen/typstmath/internal/pubsub"
	"github.com/zjrosen/typstmath/internal/walker"
)

// Update is the outcome of rendering one file.
type Update struct {
	Path string
	// Text is the file content that Result refers to.
	Text   string
	Result *engine.Result
	// Err is set for FailedEvent updates.
	Err error
}

// Decorator produces decorations for a source text.
type Decorator interface {
	Decorate(ctx context.Context, text string, opts walker.Options) (*engine.Result, error)
}

// Renderer decorates files and publishes each outcome: CreatedEvent for
// the first render of a path, UpdatedEvent for later ones, FailedEvent
// when the file cannot be read or decorated, DeletedEvent when it is gone.
type Renderer struct {
	dec       Decorator
	publisher pubsub.Publisher[Update]

	mu       sync.Mutex
	opts     walker.Options
	rendered map[string]bool
}

// NewRenderer creates a renderer publishing to publisher.
func NewRenderer(dec Decorator, publisher pubsub.Publisher[Update], opts walker.Options) *Renderer {
	return &Renderer{
		dec:       dec,
		publisher: publisher,
		opts:      opts,
		rendered:  make(map[string]bool),
	}
}

// Options returns the options used for the next render.
func (r *Renderer) Options() walker.Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

// SetOptions changes the options used from the next render on.
func (r *Renderer) SetOptions(opts walker.Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = opts
}

// Render decorates the file at path and publishes the outcome. The
// returned error is the one published with FailedEvent.
func (r *Renderer) Render(ctx context.Context, path string) error {
	opts := r.Options()

	data, err := os.ReadFile(path)
	if err != nil {
		return r.fail(path, fmt.Errorf("reading %s: %w", path, err))
	}
	text := string(data)

	res, err := r.dec.Decorate(ctx, text, opts)
	if err != nil {
		return r.fail(path, fmt.Errorf("decorating %s: %w", path, err))
	}

	r.mu.Lock()
	event := pubsub.UpdatedEvent
	if !r.rendered[path] {
		event = pubsub.CreatedEvent
		r.rendered[path] = true
	}
	r.mu.Unlock()

	log.Debug(log.CatWatcher, "rendered", "path", path, "id", res.ID, "event", string(event))
	r.publisher.Publish(event, Update{Path: path, Text: text, Result: res})
	return nil
}

func (r *Renderer) fail(path string, err error) error {
	log.ErrorErr(log.CatWatcher, "render failed", err, "path", path)
	r.publisher.Publish(pubsub.FailedEvent, Update{Path: path, Err: err})
	return err
}

// Remove publishes that path is gone. A later render counts as a first
// render again.
func (r *Renderer) Remove(path string) {
	r.mu.Lock()
	delete(r.rendered, path)
	r.mu.Unlock()

	log.Debug(log.CatWatcher, "removed", "path", path)
	r.publisher.Publish(pubsub.DeletedEvent, Update{Path: path})
}

// Run renders every change received on changes until ctx is done or the
// channel is closed. Failures are published, not returned.
func (r *Renderer) Run(ctx context.Context, changes <-chan []Change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-changes:
			if !ok {
				return nil
			}
			for _, c := range batch {
				if c.Removed {
					r.Remove(c.Path)
					continue
				}
				_ = r.Render(ctx, c.Path)
			}
		}
	}
}
