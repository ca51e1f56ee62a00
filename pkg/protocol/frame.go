// Package protocol implements the binary wire codec (spec §4.4, §6):
// length-prefixed frames carrying draw/fill/presence/chat/snapshot
// messages, plus the optional JSON envelope some deployments wrap them in.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MsgType is the one-byte frame type tag. Values are at implementer's
// discretion per spec §4.4 as long as encoder and decoder agree.
type MsgType uint8

const (
	MsgJoin MsgType = iota + 1
	MsgLeave
	MsgChat
	MsgDrawLine
	MsgDrawPoint
	MsgFill
	MsgPointerUp
	MsgSnapshot
	MsgLayers
	MsgSnapshotRequest
	MsgEndSession
)

func (t MsgType) String() string {
	switch t {
	case MsgJoin:
		return "join"
	case MsgLeave:
		return "leave"
	case MsgChat:
		return "chat"
	case MsgDrawLine:
		return "drawLine"
	case MsgDrawPoint:
		return "drawPoint"
	case MsgFill:
		return "fill"
	case MsgPointerUp:
		return "pointerup"
	case MsgSnapshot:
		return "snapshot"
	case MsgLayers:
		return "layers"
	case MsgSnapshotRequest:
		return "snapshotRequest"
	case MsgEndSession:
		return "endSession"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// frameHeaderLen is the fixed 8-byte header: len(4) + type(1) + reserved(1) + senderId(2).
const frameHeaderLen = 8

// MaxFrameLen bounds a single frame's payload to guard against a corrupt or
// hostile length prefix forcing an unbounded allocation (BoundsFault, §7).
const MaxFrameLen = 16 << 20

// Frame is one length-prefixed wire message (§6: "Wire frame layout").
type Frame struct {
	Type     MsgType
	SenderID uint16
	Payload  []byte
}

// Encode serializes the frame: [len:u32][type:u8][reserved:u8][senderId:u16][payload].
// len covers everything after itself (type + reserved + senderId + payload).
func (f Frame) Encode() []byte {
	body := 4 + len(f.Payload) // type+reserved+senderId = 4 bytes
	out := make([]byte, 4+body)
	binary.BigEndian.PutUint32(out[0:4], uint32(body))
	out[4] = byte(f.Type)
	out[5] = 0 // reserved
	binary.BigEndian.PutUint16(out[6:8], f.SenderID)
	copy(out[8:], f.Payload)
	return out
}

// ReadFrame reads exactly one frame from r. Unknown message types are
// still returned (the caller decides to skip them), matching §4.4 "Unknown
// types are skipped."
func ReadFrame(r io.Reader) (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Frame{}, err
	}
	body := binary.BigEndian.Uint32(lenBuf[:])
	if body < 4 {
		return Frame{}, fmt.Errorf("protocol: frame body length %d shorter than header", body)
	}
	if body > MaxFrameLen {
		return Frame{}, fmt.Errorf("protocol: frame body length %d exceeds max %d", body, MaxFrameLen)
	}
	rest := make([]byte, body)
	if _, err := io.ReadFull(r, rest); err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:     MsgType(rest[0]),
		SenderID: binary.BigEndian.Uint16(rest[2:4]),
		Payload:  rest[4:],
	}, nil
}
