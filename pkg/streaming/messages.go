// Package streaming defines the messages of the live combat feed.
package streaming

import (
	"encoding/json"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartCampaign = "start_campaign"
	TypeEndCampaign   = "end_campaign"
	TypeCombatEvent   = "combat_event"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartCampaignPayload names the campaign whose events follow.
type StartCampaignPayload struct {
	Name  string `json:"name"`
	Clock int64  `json:"clock"`
}
