package dispatch

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestFuncAdapter(t *testing.T) {
	var got string
	s := Func(func(text string) error {
		got = text
		return nil
	})
	if err := s.Dispatch("hello"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}

func TestTeeOffersAllAndReturnsFirstError(t *testing.T) {
	var calls []string
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	tee := Tee{
		Func(func(string) error { calls = append(calls, "a"); return errA }),
		Func(func(string) error { calls = append(calls, "b"); return errB }),
		Func(func(string) error { calls = append(calls, "c"); return nil }),
	}

	err := tee.Dispatch("x")
	if !errors.Is(err, errA) {
		t.Errorf("err = %v, want the first error", err)
	}
	if len(calls) != 3 {
		t.Errorf("called %d sinks, want all 3", len(calls))
	}
}

func TestBusDispatch(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan Message, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Errorf("unmarshal: %v", err)
			return
		}
		received <- msg
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	bus, err := DialBus(wsURL)
	if err != nil {
		t.Fatalf("DialBus: %v", err)
	}
	defer bus.Close()

	if err := bus.Dispatch("open the door"); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case msg := <-received:
		if msg.From != "murmur" || msg.Kind != "utterance" || msg.Content != "open the door" {
			t.Errorf("got %+v", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server never received the utterance")
	}
}

func TestDialBusBadURL(t *testing.T) {
	if _, err := DialBus("ws://127.0.0.1:1/nope"); err == nil {
		t.Error("want an error for an unreachable bus")
	}
}
