package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Manager is the realtime monitor hub: every connected admin dashboard
// receives device status and assignment events as they are committed.
type Manager struct {
	clients      map[string]*Client
	clientsMutex sync.RWMutex
	Register     chan *Client
	Unregister   chan *Client
	maxClients   int
	writeWait    time.Duration
	pongWait     time.Duration
	pingPeriod   time.Duration
}

func NewManager(maxClients int, writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		maxClients: maxClients,
		writeWait:  writeWait,
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if len(m.clients) >= m.maxClients {
		log.Printf("[Monitor] Max monitor connections reached, rejecting %s", client.ID)
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	log.Printf("[Monitor] Client registered: %s (admin: %s)", client.ID, client.AdminID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		close(client.Send)
		log.Printf("[Monitor] Client unregistered: %s", client.ID)
	}
}

// Broadcast fans a message out to every connected dashboard. Slow clients
// are skipped rather than blocking the caller.
func (m *Manager) Broadcast(message *Message) {
	if m == nil {
		return
	}
	raw, err := json.Marshal(message)
	if err != nil {
		log.Printf("[Monitor] Error marshaling broadcast: %v", err)
		return
	}

	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()
	for _, client := range m.clients {
		select {
		case client.Send <- raw:
		default:
			log.Printf("[Monitor] Dropping broadcast for slow client %s", client.ID)
		}
	}
}

// NotifyDeviceStatus publishes a heartbeat/pairing status change. Safe on a
// nil manager so services can run without the hub in tests.
func (m *Manager) NotifyDeviceStatus(deviceID, name, status string, lastSync *time.Time) {
	if m == nil {
		return
	}
	msg, err := NewMessage(TypeDeviceStatus, &DeviceStatusPayload{
		DeviceID: deviceID,
		Name:     name,
		Status:   status,
		LastSync: lastSync,
	})
	if err != nil {
		return
	}
	m.Broadcast(msg)
}

func (m *Manager) NotifyAssignmentUpdate(deviceID string, itemCount int) {
	if m == nil {
		return
	}
	msg, err := NewMessage(TypeAssignmentUpdate, &AssignmentUpdatePayload{
		DeviceID:  deviceID,
		ItemCount: itemCount,
	})
	if err != nil {
		return
	}
	m.Broadcast(msg)
}

func (m *Manager) NotifyContentUpdate(contentID, name, action string) {
	if m == nil {
		return
	}
	msg, err := NewMessage(TypeContentUpdate, &ContentUpdatePayload{
		ContentID: contentID,
		Name:      name,
		Action:    action,
	})
	if err != nil {
		return
	}
	m.Broadcast(msg)
}
