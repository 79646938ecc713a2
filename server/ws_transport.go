package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"mooworld/logging"
)

// WSTransport adapts a gorilla/websocket connection to the Transport
// interface, so a web host can speak the same line-oriented command and
// narrative protocol as the TCP transport, one text frame per line.
type WSTransport struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewWSTransport wraps an already-upgraded websocket connection.
func NewWSTransport(conn *websocket.Conn) *WSTransport {
	return &WSTransport{conn: conn}
}

// ReadLine blocks for the next text frame and returns its payload as a line.
func (t *WSTransport) ReadLine() (string, error) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return string(data), nil
	}
}

// WriteLine sends one narrative line as a single text frame.
func (t *WSTransport) WriteLine(msg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// Close closes the underlying websocket connection.
func (t *WSTransport) Close() error {
	return t.conn.Close()
}

// RemoteAddr returns the remote address as a string.
func (t *WSTransport) RemoteAddr() string {
	return t.conn.RemoteAddr().String()
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:   4096,
	WriteBufferSize:  4096,
	HandshakeTimeout: 10 * time.Second,
	// Accept cross-origin upgrades: the web host, not the core, is
	// responsible for same-origin policy decisions.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an incoming HTTP request to a websocket connection and
// registers it with the connection manager exactly like an accepted TCP
// socket: one Connection, one session, the same command/narrative loop.
func (cm *ConnectionManager) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Printf("websocket upgrade failed: %v", err)
		return
	}
	transport := NewWSTransport(conn)
	wsConn := cm.NewConnectionFromTransport(transport)
	logging.Printf("New websocket connection from %s (ID: %d)", wsConn.RemoteAddr(), wsConn.ID)
	go cm.HandleConnection(wsConn)
}
