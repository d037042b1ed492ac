package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSMessage is the progress event a report run's websocket stream
// emits: started, completed, or failed.
type WSMessage struct {
	Type     string `json:"type"`
	ReportID string `json:"report_id"`
	Error    string `json:"error,omitempty"`
}

type WSClient struct {
	conn     *websocket.Conn
	send     chan WSMessage
	server   *Server
	reportID string
}

// handleReportWebSocket upgrades the connection and registers the
// client under the report ID named in the URL, so broadcast only
// reaches clients watching that one run.
func (s *Server) handleReportWebSocket(c *gin.Context) {
	id := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("failed to upgrade websocket")
		return
	}

	client := &WSClient{
		conn:     conn,
		send:     make(chan WSMessage, 16),
		server:   s,
		reportID: id,
	}

	s.wsMu.Lock()
	if s.wsClients[id] == nil {
		s.wsClients[id] = make(map[*WSClient]bool)
	}
	s.wsClients[id][client] = true
	s.wsMu.Unlock()
	s.metrics.RecordWebSocketConnection(1)

	go client.writePump()
	go client.readPump()
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.server.removeClient(c)
		c.server.metrics.RecordWebSocketConnection(-1)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) removeClient(c *WSClient) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	if clients, ok := s.wsClients[c.reportID]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(s.wsClients, c.reportID)
		}
	}
}

// broadcast delivers message to every client watching reportID. A
// client whose send buffer is full is dropped rather than blocking the
// calculation goroutine.
func (s *Server) broadcast(reportID string, message WSMessage) {
	s.wsMu.Lock()
	clients := s.wsClients[reportID]
	s.wsMu.Unlock()

	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			s.removeClient(client)
		}
	}
}
