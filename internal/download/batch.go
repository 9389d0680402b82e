// Package download runs batches of curl transfers in order, tracking a state
// machine per item so the UI can render live progress.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// State is the lifecycle of one batch item.
type State string

const (
	Pending    State = "pending"
	InProgress State = "in_progress"
	Done       State = "done"
	Skipped    State = "skipped"
	Failed     State = "failed"
)

// Finished reports whether the item has reached a terminal state.
func (s State) Finished() bool {
	return s == Done || s == Skipped || s == Failed
}

// Item is one file in a batch.
type Item struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

// Options configures a batch run.
type Options struct {
	// DestDir receives the downloaded files, created if missing.
	DestDir string
	// Timeout bounds each individual transfer.
	Timeout time.Duration
	// MinBytes fails files smaller than this after download. Zero disables
	// the check.
	MinBytes int64
	// Echo prints per-item console progress.
	Echo bool
	// LogPath, when set, receives curl's stderr for the transfer-log watcher.
	LogPath string
}

// Status is a point-in-time copy of a batch's progress.
type Status struct {
	Items     []Item `json:"items"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Running   bool   `json:"running"`
}

// Batch downloads its items strictly in order. One failure does not stop the
// rest of the batch.
type Batch struct {
	mu      sync.Mutex
	items   []Item
	running bool
}

// ErrAlreadyRunning is returned when Run is called on a batch in flight.
var ErrAlreadyRunning = errors.New("a download batch is already running")

// New creates a batch with every item pending.
func New(items []Item) *Batch {
	b := &Batch{items: make([]Item, len(items))}
	copy(b.items, items)
	for i := range b.items {
		b.items[i].State = Pending
		b.items[i].Error = ""
	}
	return b
}

// Snapshot returns a copy of the batch's current state.
func (b *Batch) Snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := Status{
		Items:   make([]Item, len(b.items)),
		Total:   len(b.items),
		Running: b.running,
	}
	copy(st.Items, b.items)
	for _, item := range b.items {
		if item.State.Finished() {
			st.Completed++
		}
	}
	return st
}

// Running reports whether the batch is currently in flight.
func (b *Batch) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *Batch) setState(i int, s State, errMsg string) {
	b.mu.Lock()
	b.items[i].State = s
	b.items[i].Error = errMsg
	b.mu.Unlock()
}

// Run processes every item in order and returns once all are in a terminal
// state. It refuses to start while another Run is in progress.
func (b *Batch) Run(ctx context.Context, opts Options) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return ErrAlreadyRunning
	}
	b.running = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}()

	if err := os.MkdirAll(opts.DestDir, 0755); err != nil {
		for i := range b.items {
			b.setState(i, Failed, "Cannot create file - check drive permissions")
		}
		return fmt.Errorf("failed to create %s: %w", opts.DestDir, err)
	}

	for i := range b.items {
		b.mu.Lock()
		item := b.items[i]
		b.mu.Unlock()

		b.setState(i, InProgress, "")
		state, errMsg := b.fetchOne(ctx, item, opts)
		b.setState(i, state, errMsg)

		if opts.Echo {
			echoResult(item.Name, state, errMsg)
		}
		if ctx.Err() != nil {
			b.markRemaining(i + 1)
			return ctx.Err()
		}
	}
	return nil
}

func (b *Batch) markRemaining(from int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := from; i < len(b.items); i++ {
		if !b.items[i].State.Finished() {
			b.items[i].State = Failed
			b.items[i].Error = "Cancelled"
		}
	}
}

func (b *Batch) fetchOne(ctx context.Context, item Item, opts Options) (State, string) {
	dest := filepath.Join(opts.DestDir, item.Name)
	if _, err := os.Stat(dest); err == nil {
		return Skipped, ""
	}

	var sp *spinner.Spinner
	if opts.Echo {
		sp = spinner.New(spinner.CharSets[9], 100*time.Millisecond)
		sp.Suffix = fmt.Sprintf(" Downloading %s...", item.Name)
		sp.Start()
		defer sp.Stop()
	}

	fetchCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	exitCode, stderr, err := runCurl(fetchCtx, item.URL, dest, opts.LogPath)
	if err != nil {
		os.Remove(dest)
		if errors.Is(err, context.DeadlineExceeded) {
			return Failed, fmt.Sprintf("Download timed out (%s limit)", opts.Timeout)
		}
		if errors.Is(err, context.Canceled) {
			return Failed, "Cancelled"
		}
		return Failed, err.Error()
	}
	if exitCode != 0 {
		os.Remove(dest)
		return Failed, classify(exitCode, stderr)
	}

	info, err := os.Stat(dest)
	if err != nil || (opts.MinBytes > 0 && info.Size() < opts.MinBytes) {
		os.Remove(dest)
		return Failed, "Download incomplete"
	}
	return Done, ""
}

func echoResult(name string, state State, errMsg string) {
	switch state {
	case Done:
		color.Green("✔ %s", name)
	case Skipped:
		color.Cyan("i %s already exists, skipped", name)
	case Failed:
		color.Red("✖ %s: %s", name, errMsg)
	}
}
