package protocol

import (
	"bytes"
	"encoding/json"
)

// Envelope is the optional JSON wrapper some deployments place around a
// binary Frame (§4.4, §6). UnwrapEnvelope returns its ServerTimestamp and
// SequenceNumber alongside the decoded Frame; the session controller reads
// raw frames and does not reorder anything by these fields.
type Envelope struct {
	MsgType         string          `json:"msg_type"`
	ServerTimestamp int64           `json:"server_timestamp"`
	SequenceNumber  uint64          `json:"sequence_number"`
	ClientID        string          `json:"client_id"`
	Data            EnvelopeData    `json:"data"`
}

// EnvelopeData carries the raw frame bytes; encoding/json base64-encodes
// the []byte field automatically, matching the wire's "payload: [bytes]" shape.
type EnvelopeData struct {
	Payload []byte `json:"payload"`
}

// WrapEnvelope marshals a Frame into a server-style JSON envelope.
func WrapEnvelope(f Frame, seq uint64, serverTimestampMs int64, clientID string) ([]byte, error) {
	env := Envelope{
		MsgType:         f.Type.String(),
		ServerTimestamp: serverTimestampMs,
		SequenceNumber:  seq,
		ClientID:        clientID,
		Data:            EnvelopeData{Payload: f.Encode()},
	}
	return json.Marshal(env)
}

// UnwrapEnvelope parses a JSON envelope and decodes the inner Frame.
func UnwrapEnvelope(b []byte) (Frame, Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Frame{}, Envelope{}, err
	}
	f, err := DecodeFrameBytes(env.Data.Payload)
	if err != nil {
		return Frame{}, env, err
	}
	return f, env, nil
}

// DecodeFrameBytes decodes a single frame from an in-memory byte slice
// rather than a stream.
func DecodeFrameBytes(b []byte) (Frame, error) {
	return ReadFrame(bytes.NewReader(b))
}
