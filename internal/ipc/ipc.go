package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
)

const SocketPath = "/tmp/murmur.sock"

// Request is one control command with an optional argument, e.g.
// {"cmd":"start","arg":"macbook microphone"}.
type Request struct {
	Cmd string `json:"cmd"`
	Arg string `json:"arg,omitempty"`
}

// Response carries the human-readable outcome back to the control client.
type Response struct {
	OK     bool   `json:"ok"`
	Output string `json:"output,omitempty"`
}

// Handler turns one request into a response.
type Handler func(Request) Response

// StartServer listens on the default control socket in the background. One
// JSON request and one JSON response per connection.
func StartServer(handler Handler) error {
	return StartServerAt(SocketPath, handler)
}

// StartServerAt is StartServer bound to an explicit socket path.
func StartServerAt(path string, handler Handler) error {
	os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				continue
			}
			go handleConn(conn, handler)
		}
	}()

	return nil
}

func handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		return
	}
	resp := handler(req)
	json.NewEncoder(conn).Encode(resp)
}

// Send delivers one command to a running front end and returns its output.
func Send(cmd, arg string) (string, error) {
	return SendTo(SocketPath, cmd, arg)
}

// SendTo is Send against an explicit socket path.
func SendTo(path, cmd, arg string) (string, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(Request{Cmd: cmd, Arg: arg}); err != nil {
		return "", err
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return "", err
	}
	if !resp.OK {
		return resp.Output, fmt.Errorf("command %q failed", cmd)
	}
	return resp.Output, nil
}
