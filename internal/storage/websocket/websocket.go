// Package websocket streams combat events to a remote viewer. It is a
// write-only backend: saves and loads are not supported.
package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/OCAP2/airfight/internal/config"
	"github.com/OCAP2/airfight/internal/storage"
	"github.com/OCAP2/airfight/pkg/core"
	"github.com/OCAP2/airfight/pkg/streaming"
)

// Backend streams combat events over WebSocket.
type Backend struct {
	conn *connection
	cfg  config.WebSocketConfig
}

// New creates a new WebSocket storage backend.
func New(cfg config.WebSocketConfig, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// StartCampaign announces the campaign and waits for the server ack. The
// message is replayed after a reconnect.
func (b *Backend) StartCampaign(name string, clock int64) error {
	data, err := marshalEnvelope(streaming.TypeStartCampaign, streaming.StartCampaignPayload{Name: name, Clock: clock})
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartCampaign, ackTimeout)
}

// EndCampaign sends end_campaign and waits for the server ack.
func (b *Backend) EndCampaign() error {
	data, err := marshalEnvelope(streaming.TypeEndCampaign, nil)
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndCampaign, ackTimeout)

	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()

	return err
}

// RecordCombatEvent pushes the event to the write loop without waiting.
func (b *Backend) RecordCombatEvent(e *core.CombatEvent) error {
	data, err := marshalEnvelope(streaming.TypeCombatEvent, e)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// Dropped returns how many messages were lost to a full send queue.
func (b *Backend) Dropped() int64 {
	return b.conn.dropped.Load()
}

func (b *Backend) SaveCampaign(*core.Snapshot) error {
	return storage.ErrNotSupported
}

func (b *Backend) LoadCampaign(string) (*core.Snapshot, error) {
	return nil, storage.ErrNotSupported
}
