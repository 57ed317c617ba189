package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"quizcraft/models"
)

const writeWait = 10 * time.Second

// QuestionSource lets editors ask the hub for the authoritative question order.
type QuestionSource interface {
	ListQuestions(ctx context.Context, quizID uint) ([]models.Question, error)
}

// Hub fans quiz editing events out to the websocket clients watching a quiz.
type Hub struct {
	clients    map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	questions  QuestionSource
}

type Client struct {
	hub    *Hub
	id     string
	socket *websocket.Conn
	send   chan []byte
	quizID uint
	userID uint
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// UseQuestionSource sets where request_questions messages are answered from.
func (h *Hub) UseQuestionSource(source QuestionSource) {
	h.mutex.Lock()
	h.questions = source
	h.mutex.Unlock()
}

// Run processes client registration until ctx is done, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.quizID] == nil {
				h.clients[client.quizID] = make(map[*Client]bool)
			}
			h.clients[client.quizID][client] = true
			count := len(h.clients[client.quizID])
			h.mutex.Unlock()
			logrus.WithFields(logrus.Fields{"client_id": client.id, "quiz_id": client.quizID, "user_id": client.userID, "watchers": count}).Debug("editor connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			h.removeLocked(client)
			h.mutex.Unlock()
			logrus.WithFields(logrus.Fields{"client_id": client.id, "quiz_id": client.quizID}).Debug("editor disconnected")

		case <-ctx.Done():
			h.mutex.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					h.removeLocked(client)
				}
			}
			h.mutex.Unlock()
			return
		}
	}
}

// removeLocked drops a client and closes its send channel once. Callers hold
// the write lock.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.quizID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.quizID)
	}
}

// NotifyQuiz sends an event to everyone watching quizID. Clients whose send
// buffer is full are dropped.
func (h *Hub) NotifyQuiz(quizID uint, eventType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: eventType, Payload: payload})
	if err != nil {
		logrus.WithError(err).WithField("type", eventType).Error("marshal hub message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	sent := 0
	for client := range h.clients[quizID] {
		select {
		case client.send <- data:
			sent++
		default:
			logrus.WithField("client_id", client.id).Warn("editor send buffer full, dropping connection")
			h.removeLocked(client)
		}
	}
	logrus.WithFields(logrus.Fields{"quiz_id": quizID, "type": eventType, "clients": sent}).Debug("quiz event broadcast")
}

func (h *Hub) ClientCount(quizID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[quizID])
}

func (h *Hub) RegisterClient(conn *websocket.Conn, quizID, userID uint) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.NewString(),
		socket: conn,
		send:   make(chan []byte, 256),
		quizID: quizID,
		userID: userID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return client
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// sendTo queues data for one client if it is still connected.
func (h *Hub) sendTo(client *Client, data []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if !h.clients[client.quizID][client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.removeLocked(client)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("client_id", c.id).Warn("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			logrus.WithError(err).WithField("client_id", c.id).Debug("ignoring malformed editor message")
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		c.socket.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.socket.SetWriteDeadline(time.Now().Add(writeWait))
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		c.reply("pong", "pong")

	case "request_questions":
		c.hub.mutex.RLock()
		source := c.hub.questions
		c.hub.mutex.RUnlock()
		if source == nil {
			return
		}
		questions, err := source.ListQuestions(context.Background(), c.quizID)
		if err != nil {
			logrus.WithError(err).WithField("quiz_id", c.quizID).Error("load questions for editor")
			c.reply("error", map[string]string{"error": "could not load questions"})
			return
		}
		c.reply("questions", questions)

	default:
		logrus.WithFields(logrus.Fields{"client_id": c.id, "type": msg.Type}).Debug("unknown editor message")
	}
}

func (c *Client) reply(messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		return
	}
	c.hub.sendTo(c, data)
}
