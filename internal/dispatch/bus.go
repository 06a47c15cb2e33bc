package dispatch

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is the wire shape forwarded to a remote command interpreter.
type Message struct {
	From    string `json:"from"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// Bus forwards recognized utterances over a websocket to an external
// interpreter. Writes are serialized; the interpreter's replies, if any, are
// ignored here.
type Bus struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func DialBus(wsURL string) (*Bus, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	slog.Info("connected to command bus", "url", wsURL)
	return &Bus{conn: conn}, nil
}

func (b *Bus) Dispatch(text string) error {
	data, err := json.Marshal(Message{From: "murmur", Kind: "utterance", Content: text})
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn.Close()
}
