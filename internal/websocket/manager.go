package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"devconnector-server/internal/domain"

	"github.com/rs/zerolog"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

type Options struct {
	MaxConnPerUser int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
}

// Manager owns the set of live feed connections. Registration, removal and
// fan-out all happen on the Run goroutine; the mutex only guards readers
// such as UserConnections.
type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	HandleMessage  chan *ClientMessage
	broadcast      chan []byte
	done           chan struct{}
	maxConnPerUser int
	maxMessageSize int64
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	logger         zerolog.Logger
}

func NewManager(opts Options, logger zerolog.Logger) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		HandleMessage:  make(chan *ClientMessage),
		broadcast:      make(chan []byte, sendBufferSize),
		done:           make(chan struct{}),
		maxConnPerUser: opts.MaxConnPerUser,
		maxMessageSize: opts.MaxMessageSize,
		writeWait:      opts.WriteWait,
		pongWait:       opts.PongWait,
		pingPeriod:     opts.PingPeriod,
		logger:         logger.With().Str("component", "websocket").Logger(),
	}
}

// Run processes manager events until ctx is cancelled, then closes every
// remaining connection.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)

		case payload := <-m.broadcast:
			m.fanOut(payload)

		case <-ctx.Done():
			m.closeAll()
			close(m.done)
			return
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.maxConnPerUser > 0 && len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		m.logger.Warn().Str("user", client.UserID).Msg("max connections reached")
		close(client.Send)
		return
	}

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]bool)
	}
	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = true

	m.logger.Debug().Str("client", client.ID).Str("user", client.UserID).Msg("client registered")
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	m.removeLocked(client)
}

func (m *Manager) removeLocked(client *Client) {
	if _, ok := m.clients[client.ID]; !ok {
		return
	}

	delete(m.clients, client.ID)
	delete(m.userIndex[client.UserID], client.ID)
	if len(m.userIndex[client.UserID]) == 0 {
		delete(m.userIndex, client.UserID)
	}

	close(client.Send)
	m.logger.Debug().Str("client", client.ID).Msg("client unregistered")
}

func (m *Manager) closeAll() {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for _, client := range m.clients {
		m.removeLocked(client)
	}
}

// fanOut delivers payload to every client. A client whose buffer is full is
// dropped rather than allowed to stall the feed.
func (m *Manager) fanOut(payload []byte) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	for id, client := range m.clients {
		select {
		case client.Send <- payload:
		default:
			m.logger.Warn().Str("client", id).Msg("send buffer full, closing connection")
			m.removeLocked(client)
		}
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		m.logger.Debug().Err(err).Str("client", clientMsg.Client.ID).Msg("discarding malformed message")
		return
	}

	switch msg.Type {
	case TypePing:
		pong, err := NewMessage(TypePong, nil)
		if err != nil {
			return
		}
		m.sendTo(clientMsg.Client, pong)
	default:
		m.logger.Debug().Str("type", string(msg.Type)).Msg("unknown message type")
	}
}

func (m *Manager) sendTo(client *Client, message *Message) {
	b, err := json.Marshal(message)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to encode message")
		return
	}

	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if _, ok := m.clients[client.ID]; !ok {
		return
	}
	select {
	case client.Send <- b:
	default:
		m.logger.Warn().Str("client", client.ID).Msg("send buffer full")
	}
}

// Broadcast queues a message for every connected client. It never blocks
// the caller; when the queue is full the message is dropped.
func (m *Manager) Broadcast(msgType MessageType, payload interface{}) {
	message, err := NewMessage(msgType, payload)
	if err != nil {
		m.logger.Error().Err(err).Str("type", string(msgType)).Msg("failed to build message")
		return
	}

	b, err := json.Marshal(message)
	if err != nil {
		m.logger.Error().Err(err).Str("type", string(msgType)).Msg("failed to encode message")
		return
	}

	select {
	case m.broadcast <- b:
	default:
		m.logger.Warn().Str("type", string(msgType)).Msg("broadcast queue full, dropping message")
	}
}

// Done is closed once Run has returned.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

func (m *Manager) UserConnections(userID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	return len(m.userIndex[userID])
}

func (m *Manager) PostCreated(post *domain.Post) {
	m.Broadcast(TypePostCreated, post)
}

func (m *Manager) PostDeleted(postID string) {
	m.Broadcast(TypePostDeleted, PostDeletedPayload{PostID: postID})
}

func (m *Manager) LikesUpdated(postID string, likes []domain.Like) {
	m.Broadcast(TypeLikesUpdated, LikesPayload{PostID: postID, Likes: likes})
}

func (m *Manager) CommentsUpdated(postID string, comments []domain.Comment) {
	m.Broadcast(TypeCommentsUpdated, CommentsPayload{PostID: postID, Comments: comments})
}
