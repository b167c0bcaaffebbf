// Package surface bridges the isolated content pane over a websocket.
package surface

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frudas24/padglass/internal/element"
)

// NavFunc receives pane navigation lifecycle phases.
type NavFunc func(phase string)

// Bridge is the asynchronous boundary to the content pane's script. The
// pane connects to the bridge's websocket endpoint; element queries are
// correlated by id, commands are fire-and-forget. At most one pane
// connection is active at a time.
type Bridge struct {
	mu           sync.Mutex
	upgrader     websocket.Upgrader
	conn         *websocket.Conn
	writeMu      sync.Mutex
	pending      map[int]chan Message
	nextID       int
	queryTimeout time.Duration
	surfaceBox   func() element.Box
	onNav        NavFunc
}

// NewBridge returns a bridge. surfaceBox reports the pane's on-screen
// bounds in viewport coordinates; onNav receives navigation lifecycle
// phases and may be nil.
func NewBridge(queryTimeout time.Duration, surfaceBox func() element.Box, onNav NavFunc) *Bridge {
	return &Bridge{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pending:      make(map[int]chan Message),
		queryTimeout: queryTimeout,
		surfaceBox:   surfaceBox,
		onNav:        onNav,
	}
}

// ServeHTTP upgrades the pane's connection and pumps its messages.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := b.acceptConn(conn); err != nil {
		_ = conn.Close()
		return
	}
	defer b.cleanupConn(conn)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		b.handleMessage(msg)
	}
}

// acceptConn ensures only one pane connection exists.
func (b *Bridge) acceptConn(conn *websocket.Conn) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		return fmt.Errorf("pane connection already active")
	}
	b.conn = conn
	return nil
}

// cleanupConn clears the active connection and fails outstanding queries.
func (b *Bridge) cleanupConn(conn *websocket.Conn) {
	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
	}
	for id, ch := range b.pending {
		close(ch)
		delete(b.pending, id)
	}
	b.mu.Unlock()
	_ = conn.Close()
}

// handleMessage routes one inbound pane message.
func (b *Bridge) handleMessage(msg Message) {
	switch msg.T {
	case "elements":
		b.mu.Lock()
		ch, ok := b.pending[msg.ID]
		if ok {
			delete(b.pending, msg.ID)
		}
		b.mu.Unlock()
		if ok {
			ch <- msg
			close(ch)
		}
	case "nav":
		if b.onNav != nil {
			b.onNav(msg.Phase)
		}
	}
}

// QueryElements asks the pane to enumerate its interactive elements.
// Blocks until the pane answers or the query times out; run it off the
// polling tick.
func (b *Bridge) QueryElements(forceStyleReinit bool) ([]element.RemoteElement, error) {
	b.mu.Lock()
	if b.conn == nil {
		b.mu.Unlock()
		return nil, errors.New("no pane connected")
	}
	b.nextID++
	id := b.nextID
	ch := make(chan Message, 1)
	b.pending[id] = ch
	b.mu.Unlock()

	if err := b.send(Message{T: "query", ID: id, Force: forceStyleReinit}); err != nil {
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
		return nil, err
	}

	select {
	case msg, ok := <-ch:
		if !ok {
			return nil, errors.New("pane disconnected mid-query")
		}
		if msg.Error != "" {
			return nil, errors.New(msg.Error)
		}
		out := make([]element.RemoteElement, 0, len(msg.Elements))
		for _, we := range msg.Elements {
			out = append(out, element.RemoteElement{
				Index: we.Index,
				Box: element.Box{
					Left:   we.Rect.Left,
					Top:    we.Rect.Top,
					Right:  we.Rect.Right,
					Bottom: we.Rect.Bottom,
				},
			})
		}
		return out, nil
	case <-time.After(b.queryTimeout):
		b.mu.Lock()
		delete(b.pending, id)
		b.mu.Unlock()
		return nil, errors.New("pane query timed out")
	}
}

// SurfaceBox returns the pane's on-screen bounds.
func (b *Bridge) SurfaceBox() element.Box {
	return b.surfaceBox()
}

// Click triggers the pane element behind an opaque index. Best-effort: a
// stale index simply does nothing on the pane side.
func (b *Bridge) Click(index int) error {
	return b.send(Message{T: "click", Index: index})
}

// Highlight toggles the highlight of the pane element behind an index.
func (b *Bridge) Highlight(index int, on bool) error {
	return b.send(Message{T: "highlight", Index: index, On: &on})
}

// Scroll scrolls the pane content by a vertical delta.
func (b *Bridge) Scroll(dy float64) error {
	return b.send(Message{T: "scroll", DY: dy})
}

// Back asks the pane to navigate one step back in its history.
func (b *Bridge) Back() error {
	return b.send(Message{T: "back"})
}

// Home asks the pane to load its start page.
func (b *Bridge) Home() error {
	return b.send(Message{T: "home"})
}

// Submit asks the pane to confirm its current context, like pressing
// enter in a focused form.
func (b *Bridge) Submit() error {
	return b.send(Message{T: "submit"})
}

// Search asks the pane to run a search for the given text.
func (b *Bridge) Search(text string) error {
	return b.send(Message{T: "search", Text: text})
}

// Connected reports whether a pane is attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// send writes one message to the pane connection.
func (b *Bridge) send(msg Message) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return errors.New("no pane connected")
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("pane send: %v", err)
		return err
	}
	return nil
}
