package log

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

const feedBufferSize = 64

// Entry is one published log line.
type Entry struct {
	Level    Level
	Category Category
	Line     string
}

// Feed fans log entries out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the entry.
type Feed struct {
	mu     sync.RWMutex
	subs   map[chan Entry]struct{}
	closed bool
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[chan Entry]struct{})}
}

// Subscribe returns a channel that is closed when ctx ends or the feed closes.
func (f *Feed) Subscribe(ctx context.Context) <-chan Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Entry, feedBufferSize)
	if f.closed {
		close(ch)
		return ch
	}
	f.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[ch]; ok {
			delete(f.subs, ch)
			close(ch)
		}
	}()
	return ch
}

func (f *Feed) Publish(e Entry) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for ch := range f.subs {
		close(ch)
	}
	f.subs = map[chan Entry]struct{}{}
}

// Subscribers returns the live subscriber count.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// EntryMsg delivers a log entry into the Bubble Tea update loop.
type EntryMsg Entry

// Listener keeps one feed subscription alive across Update calls.
type Listener struct {
	ctx context.Context
	ch  <-chan Entry
}

// NewListener subscribes to the global logger's feed. It returns nil when
// logging is not initialized.
func NewListener(ctx context.Context) *Listener {
	l := current()
	if l == nil {
		return nil
	}
	return &Listener{ctx: ctx, ch: l.feed.Subscribe(ctx)}
}

// Listen waits for the next entry. Re-issue it after every EntryMsg.
func (l *Listener) Listen() tea.Cmd {
	if l == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-l.ctx.Done():
			return nil
		case e, ok := <-l.ch:
			if !ok {
				return nil
			}
			return EntryMsg(e)
		}
	}
}
