package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

func TestJoinRoundTrip(t *testing.T) {
	want := Join{UserID: "alice", TimestampMs: 1234567890}
	got, err := DecodeJoin(EncodeJoin(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLeaveRoundTrip(t *testing.T) {
	want := Leave{UserID: "bob", Username: "Bob", TimestampMs: 42}
	got, err := DecodeLeave(EncodeLeave(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestChatRoundTrip(t *testing.T) {
	want := Chat{UserID: "u1", Username: "User One", Message: "hello there", TimestampMs: 99}
	payload, err := EncodeChat(want)
	require.NoError(t, err)
	got, err := DecodeChat(payload)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestChatRejectsOversizeMessage(t *testing.T) {
	_, err := EncodeChat(Chat{Message: strings.Repeat("x", MaxChatBytes+1)})
	assert.Error(t, err)
}

func TestDrawLineRoundTrip(t *testing.T) {
	want := DrawLine{
		UserID: "u", Layer: types.LayerForeground,
		FromX: 10, FromY: 20, ToX: 30, ToY: 40,
		Size: 5, Brush: types.BrushHalftone,
		Color: types.RGBA{R: 1, G: 2, B: 3, A: 4},
	}
	got, err := DecodeDrawLine(EncodeDrawLine(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDrawPointRoundTrip(t *testing.T) {
	want := DrawPoint{UserID: "u", Layer: types.LayerBackground, X: 7, Y: 8, Size: 3, Brush: types.BrushEraser, Color: types.RGBA{R: 9}}
	got, err := DecodeDrawPoint(EncodeDrawPoint(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFillRoundTrip(t *testing.T) {
	want := Fill{UserID: "u", Layer: types.LayerForeground, X: 1, Y: 2, Color: types.RGBA{A: 255}}
	got, err := DecodeFill(EncodeFill(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPointerUpRoundTrip(t *testing.T) {
	want := PointerUp{UserID: "u"}
	got, err := DecodePointerUp(EncodePointerUp(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshotRoundTrip(t *testing.T) {
	want := Snapshot{UserID: "u", Layer: types.LayerForeground, PNG: []byte{1, 2, 3, 4, 5}}
	got, err := DecodeSnapshot(EncodeSnapshot(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSnapshotRejectsTruncatedBody(t *testing.T) {
	full := EncodeSnapshot(Snapshot{UserID: "u", PNG: []byte{1, 2, 3, 4}})
	_, err := DecodeSnapshot(full[:len(full)-2])
	assert.Error(t, err)
}

func TestLayersRoundTrip(t *testing.T) {
	want := Layers{Participants: []LayersParticipant{
		{UserID: "a", Username: "Alice", JoinTimestampMs: 1},
		{UserID: "b", Username: "Bob", JoinTimestampMs: 2},
	}}
	got, err := DecodeLayers(EncodeLayers(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLayersEmptyRoster(t *testing.T) {
	got, err := DecodeLayers(EncodeLayers(Layers{}))
	require.NoError(t, err)
	assert.Empty(t, got.Participants)
}

func TestSnapshotRequestRoundTrip(t *testing.T) {
	want := SnapshotRequest{TimestampMs: 555}
	got, err := DecodeSnapshotRequest(EncodeSnapshotRequest(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEndSessionRoundTrip(t *testing.T) {
	want := EndSession{UserID: "u", PostURL: "https://example.invalid/post"}
	got, err := DecodeEndSession(EncodeEndSession(want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetStringRejectsShortBuffer(t *testing.T) {
	_, _, err := getString([]byte{0})
	assert.Error(t, err)
}
