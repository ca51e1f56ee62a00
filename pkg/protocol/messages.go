package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// MaxChatBytes bounds chat payload per spec §4.4 ("message (<=500 bytes)").
const MaxChatBytes = 500

// --- string/bytes helpers: UTF-8, 2-byte length prefix (§4.4) ---

func putString(buf *bytes.Buffer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("protocol: string too long (%d bytes)", len(s))
	}
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(s)))
	buf.Write(l[:])
	buf.WriteString(s)
	return nil
}

func getString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, fmt.Errorf("protocol: short string length prefix")
	}
	n := int(binary.BigEndian.Uint16(b[0:2]))
	b = b[2:]
	if len(b) < n {
		return "", nil, fmt.Errorf("protocol: short string body")
	}
	return string(b[:n]), b[n:], nil
}

func putUint16(buf *bytes.Buffer, v int) {
	var x [2]byte
	binary.BigEndian.PutUint16(x[:], uint16(v))
	buf.Write(x[:])
}

func putUint64(buf *bytes.Buffer, v int64) {
	var x [8]byte
	binary.BigEndian.PutUint64(x[:], uint64(v))
	buf.Write(x[:])
}

func getUint16(b []byte) (int, []byte, error) {
	if len(b) < 2 {
		return 0, nil, fmt.Errorf("protocol: short uint16")
	}
	return int(binary.BigEndian.Uint16(b[0:2])), b[2:], nil
}

func getUint64(b []byte) (int64, []byte, error) {
	if len(b) < 8 {
		return 0, nil, fmt.Errorf("protocol: short uint64")
	}
	return int64(binary.BigEndian.Uint64(b[0:8])), b[8:], nil
}

func putRGBA(buf *bytes.Buffer, c types.RGBA) {
	buf.WriteByte(c.R)
	buf.WriteByte(c.G)
	buf.WriteByte(c.B)
	buf.WriteByte(c.A)
}

func getRGBA(b []byte) (types.RGBA, []byte, error) {
	if len(b) < 4 {
		return types.RGBA{}, nil, fmt.Errorf("protocol: short rgba")
	}
	return types.RGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, b[4:], nil
}

// --- Join ---

type Join struct {
	UserID      string
	TimestampMs int64
}

func EncodeJoin(m Join) []byte {
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	putUint64(&buf, m.TimestampMs)
	return buf.Bytes()
}

func DecodeJoin(b []byte) (Join, error) {
	userID, b, err := getString(b)
	if err != nil {
		return Join{}, err
	}
	ts, _, err := getUint64(b)
	if err != nil {
		return Join{}, err
	}
	return Join{UserID: userID, TimestampMs: ts}, nil
}

// --- Leave ---

type Leave struct {
	UserID      string
	Username    string
	TimestampMs int64
}

func EncodeLeave(m Leave) []byte {
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	_ = putString(&buf, m.Username)
	putUint64(&buf, m.TimestampMs)
	return buf.Bytes()
}

func DecodeLeave(b []byte) (Leave, error) {
	userID, b, err := getString(b)
	if err != nil {
		return Leave{}, err
	}
	username, b, err := getString(b)
	if err != nil {
		return Leave{}, err
	}
	ts, _, err := getUint64(b)
	if err != nil {
		return Leave{}, err
	}
	return Leave{UserID: userID, Username: username, TimestampMs: ts}, nil
}

// --- Chat ---

type Chat struct {
	UserID      string
	Username    string
	Message     string
	TimestampMs int64
}

func EncodeChat(m Chat) ([]byte, error) {
	if len(m.Message) > MaxChatBytes {
		return nil, fmt.Errorf("protocol: chat message exceeds %d bytes", MaxChatBytes)
	}
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	_ = putString(&buf, m.Username)
	_ = putString(&buf, m.Message)
	putUint64(&buf, m.TimestampMs)
	return buf.Bytes(), nil
}

func DecodeChat(b []byte) (Chat, error) {
	userID, b, err := getString(b)
	if err != nil {
		return Chat{}, err
	}
	username, b, err := getString(b)
	if err != nil {
		return Chat{}, err
	}
	message, b, err := getString(b)
	if err != nil {
		return Chat{}, err
	}
	if len(message) > MaxChatBytes {
		return Chat{}, fmt.Errorf("protocol: chat message exceeds %d bytes", MaxChatBytes)
	}
	ts, _, err := getUint64(b)
	if err != nil {
		return Chat{}, err
	}
	return Chat{UserID: userID, Username: username, Message: message, TimestampMs: ts}, nil
}

// --- DrawLine ---

type DrawLine struct {
	UserID                 string
	Layer                  types.LayerKind
	FromX, FromY, ToX, ToY int
	Size                   int
	Brush                  types.BrushType
	Color                  types.RGBA
}

func EncodeDrawLine(m DrawLine) []byte {
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	buf.WriteByte(byte(m.Layer))
	putUint16(&buf, m.FromX)
	putUint16(&buf, m.FromY)
	putUint16(&buf, m.ToX)
	putUint16(&buf, m.ToY)
	buf.WriteByte(byte(m.Size))
	buf.WriteByte(byte(m.Brush))
	putRGBA(&buf, m.Color)
	return buf.Bytes()
}

func DecodeDrawLine(b []byte) (DrawLine, error) {
	userID, b, err := getString(b)
	if err != nil {
		return DrawLine{}, err
	}
	if len(b) < 1 {
		return DrawLine{}, fmt.Errorf("protocol: short drawLine")
	}
	layer := types.LayerKind(b[0])
	b = b[1:]
	fx, b, err := getUint16(b)
	if err != nil {
		return DrawLine{}, err
	}
	fy, b, err := getUint16(b)
	if err != nil {
		return DrawLine{}, err
	}
	tx, b, err := getUint16(b)
	if err != nil {
		return DrawLine{}, err
	}
	ty, b, err := getUint16(b)
	if err != nil {
		return DrawLine{}, err
	}
	if len(b) < 2 {
		return DrawLine{}, fmt.Errorf("protocol: short drawLine tail")
	}
	size, brush := int(b[0]), types.BrushType(b[1])
	b = b[2:]
	color, _, err := getRGBA(b)
	if err != nil {
		return DrawLine{}, err
	}
	return DrawLine{UserID: userID, Layer: layer, FromX: fx, FromY: fy, ToX: tx, ToY: ty, Size: size, Brush: brush, Color: color}, nil
}

// --- DrawPoint ---

type DrawPoint struct {
	UserID string
	Layer  types.LayerKind
	X, Y   int
	Size   int
	Brush  types.BrushType
	Color  types.RGBA
}

func EncodeDrawPoint(m DrawPoint) []byte {
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	buf.WriteByte(byte(m.Layer))
	putUint16(&buf, m.X)
	putUint16(&buf, m.Y)
	buf.WriteByte(byte(m.Size))
	buf.WriteByte(byte(m.Brush))
	putRGBA(&buf, m.Color)
	return buf.Bytes()
}

func DecodeDrawPoint(b []byte) (DrawPoint, error) {
	userID, b, err := getString(b)
	if err != nil {
		return DrawPoint{}, err
	}
	if len(b) < 1 {
		return DrawPoint{}, fmt.Errorf("protocol: short drawPoint")
	}
	layer := types.LayerKind(b[0])
	b = b[1:]
	x, b, err := getUint16(b)
	if err != nil {
		return DrawPoint{}, err
	}
	y, b, err := getUint16(b)
	if err != nil {
		return DrawPoint{}, err
	}
	if len(b) < 2 {
		return DrawPoint{}, fmt.Errorf("protocol: short drawPoint tail")
	}
	size, brush := int(b[0]), types.BrushType(b[1])
	b = b[2:]
	color, _, err := getRGBA(b)
	if err != nil {
		return DrawPoint{}, err
	}
	return DrawPoint{UserID: userID, Layer: layer, X: x, Y: y, Size: size, Brush: brush, Color: color}, nil
}

// --- Fill ---

type Fill struct {
	UserID string
	Layer  types.LayerKind
	X, Y   int
	Color  types.RGBA
}

func EncodeFill(m Fill) []byte {
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	buf.WriteByte(byte(m.Layer))
	putUint16(&buf, m.X)
	putUint16(&buf, m.Y)
	putRGBA(&buf, m.Color)
	return buf.Bytes()
}

func DecodeFill(b []byte) (Fill, error) {
	userID, b, err := getString(b)
	if err != nil {
		return Fill{}, err
	}
	if len(b) < 1 {
		return Fill{}, fmt.Errorf("protocol: short fill")
	}
	layer := types.LayerKind(b[0])
	b = b[1:]
	x, b, err := getUint16(b)
	if err != nil {
		return Fill{}, err
	}
	y, b, err := getUint16(b)
	if err != nil {
		return Fill{}, err
	}
	color, _, err := getRGBA(b)
	if err != nil {
		return Fill{}, err
	}
	return Fill{UserID: userID, Layer: layer, X: x, Y: y, Color: color}, nil
}

// --- PointerUp ---

type PointerUp struct {
	UserID string
}

func EncodePointerUp(m PointerUp) []byte {
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	return buf.Bytes()
}

func DecodePointerUp(b []byte) (PointerUp, error) {
	userID, _, err := getString(b)
	if err != nil {
		return PointerUp{}, err
	}
	return PointerUp{UserID: userID}, nil
}

// --- Snapshot ---

type Snapshot struct {
	UserID string
	Layer  types.LayerKind
	PNG    []byte
}

func EncodeSnapshot(m Snapshot) []byte {
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	buf.WriteByte(byte(m.Layer))
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(m.PNG)))
	buf.Write(l[:])
	buf.Write(m.PNG)
	return buf.Bytes()
}

func DecodeSnapshot(b []byte) (Snapshot, error) {
	userID, b, err := getString(b)
	if err != nil {
		return Snapshot{}, err
	}
	if len(b) < 1+4 {
		return Snapshot{}, fmt.Errorf("protocol: short snapshot header")
	}
	layer := types.LayerKind(b[0])
	b = b[1:]
	n := binary.BigEndian.Uint32(b[0:4])
	b = b[4:]
	if n > MaxFrameLen || uint32(len(b)) < n {
		return Snapshot{}, fmt.Errorf("protocol: short snapshot body")
	}
	png := make([]byte, n)
	copy(png, b[:n])
	return Snapshot{UserID: userID, Layer: layer, PNG: png}, nil
}

// --- Layers (participant roster) ---

type LayersParticipant struct {
	UserID          string
	Username        string
	JoinTimestampMs int64
}

type Layers struct {
	Participants []LayersParticipant
}

func EncodeLayers(m Layers) []byte {
	var buf bytes.Buffer
	putUint16(&buf, len(m.Participants))
	for _, p := range m.Participants {
		_ = putString(&buf, p.UserID)
		_ = putString(&buf, p.Username)
		putUint64(&buf, p.JoinTimestampMs)
	}
	return buf.Bytes()
}

func DecodeLayers(b []byte) (Layers, error) {
	count, b, err := getUint16(b)
	if err != nil {
		return Layers{}, err
	}
	out := Layers{Participants: make([]LayersParticipant, 0, count)}
	for i := 0; i < count; i++ {
		var p LayersParticipant
		p.UserID, b, err = getString(b)
		if err != nil {
			return Layers{}, err
		}
		p.Username, b, err = getString(b)
		if err != nil {
			return Layers{}, err
		}
		p.JoinTimestampMs, b, err = getUint64(b)
		if err != nil {
			return Layers{}, err
		}
		out.Participants = append(out.Participants, p)
	}
	return out, nil
}

// --- SnapshotRequest ---

type SnapshotRequest struct {
	TimestampMs int64
}

func EncodeSnapshotRequest(m SnapshotRequest) []byte {
	var buf bytes.Buffer
	putUint64(&buf, m.TimestampMs)
	return buf.Bytes()
}

func DecodeSnapshotRequest(b []byte) (SnapshotRequest, error) {
	ts, _, err := getUint64(b)
	if err != nil {
		return SnapshotRequest{}, err
	}
	return SnapshotRequest{TimestampMs: ts}, nil
}

// --- EndSession ---

type EndSession struct {
	UserID  string
	PostURL string
}

func EncodeEndSession(m EndSession) []byte {
	var buf bytes.Buffer
	_ = putString(&buf, m.UserID)
	_ = putString(&buf, m.PostURL)
	return buf.Bytes()
}

func DecodeEndSession(b []byte) (EndSession, error) {
	userID, b, err := getString(b)
	if err != nil {
		return EndSession{}, err
	}
	postURL, _, err := getString(b)
	if err != nil {
		return EndSession{}, err
	}
	return EndSession{UserID: userID, PostURL: postURL}, nil
}
