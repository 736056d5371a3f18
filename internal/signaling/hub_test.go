package signaling_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/rosaguta/DIV-C-Server/internal/signaling"
)

func startHub(t *testing.T, maxClients int) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := signaling.NewHub(signaling.NewDirectory(maxClients), quietLogger())
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, signaling.DefaultClientOptions())
	}))

	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

type peer struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

// dial connects and consumes the connected event.
func dial(t *testing.T, url string) *peer {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	p := &peer{t: t, conn: conn}
	msg := p.readUntil(signaling.EventConnected)
	var self signaling.Participant
	require.NoError(t, json.Unmarshal(msg.Payload, &self))
	require.NotEmpty(t, self.ID)
	require.Equal(t, signaling.Username(self.ID), self.Username)
	p.id = self.ID
	return p
}

func (p *peer) send(event, room string, payload any) {
	p.t.Helper()
	msg, err := signaling.NewMessage(event, room, payload)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteJSON(msg))
}

func (p *peer) sendRaw(frame string) {
	p.t.Helper()
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

// readUntil skips frames until one of type event arrives.
func (p *peer) readUntil(event string) *signaling.Message {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg signaling.Message
		require.NoError(p.t, p.conn.ReadJSON(&msg), "waiting for %q", event)
		if msg.Type == event {
			return &msg
		}
	}
}

func TestHub_TwoPeersJoinAndChat(t *testing.T) {
	req := require.New(t)
	url := startHub(t, 10)
	alice := dial(t, url)
	bob := dial(t, url)

	alice.send(signaling.EventJoin, "room-x", nil)
	alice.readUntil(signaling.EventCreated)

	bob.send(signaling.EventJoin, "room-x", nil)
	list := bob.readUntil(signaling.EventUserList)
	var members []signaling.Participant
	req.NoError(json.Unmarshal(list.Payload, &members))
	req.Equal([]signaling.Participant{signaling.NewParticipant(alice.id)}, members)
	bob.readUntil(signaling.EventJoined)

	joined := alice.readUntil(signaling.EventUserJoined)
	var newcomer signaling.Participant
	req.NoError(json.Unmarshal(joined.Payload, &newcomer))
	req.Equal(bob.id, newcomer.ID)

	bob.send(signaling.EventMessage, "room-x", "hi")
	for _, p := range []*peer{alice, bob} {
		msg := p.readUntil(signaling.EventMessage)
		var history []string
		req.NoError(json.Unmarshal(msg.Payload, &history))
		req.Equal([]string{signaling.Username(bob.id) + ": hi"}, history)
	}
}

func TestHub_TargetedOfferCarriesSender(t *testing.T) {
	req := require.New(t)
	url := startHub(t, 10)
	alice := dial(t, url)
	bob := dial(t, url)

	alice.send(signaling.EventJoin, "room-x", nil)
	alice.readUntil(signaling.EventCreated)
	bob.send(signaling.EventJoin, "room-x", nil)
	bob.readUntil(signaling.EventJoined)

	bob.send(signaling.EventOffer, "room-x", signaling.OfferPayload{
		Offer:    json.RawMessage(`{"type":"offer","sdp":"v=0"}`),
		TargetID: alice.id,
	})

	msg := alice.readUntil(signaling.EventOffer)
	var offer signaling.OfferPayload
	req.NoError(json.Unmarshal(msg.Payload, &offer))
	req.Equal(bob.id, offer.From)
	req.JSONEq(`{"type":"offer","sdp":"v=0"}`, string(offer.Offer))
}

func TestHub_DisconnectNotifiesRoom(t *testing.T) {
	url := startHub(t, 10)
	alice := dial(t, url)
	bob := dial(t, url)

	alice.send(signaling.EventJoin, "room-x", nil)
	alice.readUntil(signaling.EventCreated)
	bob.send(signaling.EventJoin, "room-x", nil)
	bob.readUntil(signaling.EventJoined)

	require.NoError(t, bob.conn.Close())

	msg := alice.readUntil(signaling.EventUserLeft)
	var id string
	require.NoError(t, json.Unmarshal(msg.Payload, &id))
	require.Equal(t, bob.id, id)
}

func TestHub_FullRoomRejectsOverflow(t *testing.T) {
	url := startHub(t, 2)
	first := dial(t, url)
	second := dial(t, url)
	third := dial(t, url)

	first.send(signaling.EventJoin, "small", nil)
	first.readUntil(signaling.EventCreated)
	second.send(signaling.EventJoin, "small", nil)
	second.readUntil(signaling.EventJoined)

	third.send(signaling.EventJoin, "small", nil)
	msg := third.readUntil(signaling.EventFull)
	require.Equal(t, "small", msg.Room)
}

func TestHub_MalformedFrameKeepsConnection(t *testing.T) {
	url := startHub(t, 10)
	alice := dial(t, url)

	alice.sendRaw(`{not json`)
	alice.sendRaw(`{"type":"teleport","room":"room-x"}`)
	alice.sendRaw(`{"type":"offer","room":"room-x"}`)

	// Then the connection still serves well-formed events
	alice.send(signaling.EventMessages, "room-x", nil)
	msg := alice.readUntil(signaling.EventMessage)
	require.JSONEq(t, `[]`, string(msg.Payload))
}
