package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/rosaguta/DIV-C-Server/internal/sigclient"
	"github.com/rosaguta/DIV-C-Server/internal/signaling"
)

// Signaler carries handshake messages to a single remote peer.
type Signaler interface {
	Offer(room, target string, sdp any) error
	Answer(room, target string, sdp any) error
	Candidate(room, target string, candidate any) error
}

// EventKind classifies mesh events.
type EventKind int

const (
	PeerConnected EventKind = iota
	PeerGreeted
	PeerText
	PeerLeft
	PeerFailed
)

// Event is something that happened on a peer link.
type Event struct {
	Kind EventKind
	Peer string
	Name string
	Body string
	Err  error
}

const eventBuffer = 64

// link is the state of one peer connection.
type link struct {
	id        string
	name      string
	pc        *webrtc.PeerConnection
	dc        *webrtc.DataChannel
	remoteSet bool
	pending   []webrtc.ICECandidateInit
}

// Mesh keeps one peer connection per remote room member. The member that
// joins last offers to everyone already present; the others answer.
type Mesh struct {
	api    *webrtc.API
	config webrtc.Configuration
	room   string
	name   string
	signal Signaler
	log    *slog.Logger

	mu     sync.Mutex
	links  map[string]*link
	events chan Event
	closed bool
}

// NewMesh creates an empty mesh for room. name is announced to peers.
func NewMesh(api *webrtc.API, cfg webrtc.Configuration, room, name string, signal Signaler, log *slog.Logger) *Mesh {
	if log == nil {
		log = slog.Default()
	}
	return &Mesh{
		api:    api,
		config: cfg,
		room:   room,
		name:   name,
		signal: signal,
		log:    log.With("component", "mesh", "room", room),
		links:  make(map[string]*link),
		events: make(chan Event, eventBuffer),
	}
}

// Events delivers link lifecycle and chat events. It is never closed.
func (m *Mesh) Events() <-chan Event {
	return m.events
}

func (m *Mesh) emit(e Event) {
	select {
	case m.events <- e:
	default:
		m.log.Warn("Event buffer full, dropping", "peer", e.Peer, "kind", e.Kind)
	}
}

// Peers returns the ids of peers with an open chat channel.
func (m *Mesh) Peers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, l := range m.links {
		if l.dc != nil && l.dc.ReadyState() == webrtc.DataChannelStateOpen {
			ids = append(ids, id)
		}
	}
	return ids
}

// getOrCreate returns the link for id, creating its peer connection.
// Callers hold m.mu.
func (m *Mesh) getOrCreate(id string) (*link, error) {
	if l, ok := m.links[id]; ok {
		return l, nil
	}
	if m.closed {
		return nil, ErrPeerDisconnected
	}

	pc, err := m.api.NewPeerConnection(m.config)
	if err != nil {
		return nil, NewPeerError("create peer connection", id, err)
	}
	l := &link{id: id, pc: pc}
	m.links[id] = l

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		if err := m.signal.Candidate(m.room, id, c.ToJSON()); err != nil {
			m.log.Debug("Failed to send candidate", "peer", id, "err", err)
		}
	})
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		m.log.Debug("Peer connection state", "peer", id, "state", state.String())
		if state == webrtc.PeerConnectionStateFailed {
			m.drop(id, PeerFailed, NewPeerError("connect", id, ErrPeerDisconnected))
		}
	})
	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() != chatChannelLabel {
			return
		}
		m.attach(l, dc)
	})
	return l, nil
}

// attach wires the chat channel of l.
func (m *Mesh) attach(l *link, dc *webrtc.DataChannel) {
	m.mu.Lock()
	l.dc = dc
	m.mu.Unlock()

	dc.OnOpen(func() {
		m.emit(Event{Kind: PeerConnected, Peer: l.id})
		if err := sendFrame(dc, FrameHello, hello(m.name)); err != nil {
			m.log.Debug("Failed to greet peer", "peer", l.id, "err", err)
		}
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		m.receive(l, msg.Data)
	})
}

func (m *Mesh) receive(l *link, data []byte) {
	f, err := ParseFrame(data)
	if err != nil {
		m.log.Warn("Dropping frame", "peer", l.id, "err", err)
		return
	}

	switch f.Type {
	case FrameHello:
		var p HelloPayload
		if err := f.DecodePayload(&p); err != nil {
			m.log.Warn("Dropping frame", "peer", l.id, "err", err)
			return
		}
		m.mu.Lock()
		l.name = p.Name
		m.mu.Unlock()
		m.emit(Event{Kind: PeerGreeted, Peer: l.id, Name: p.Name, Body: p.Version})

	case FrameText:
		var p TextPayload
		if err := f.DecodePayload(&p); err != nil {
			m.log.Warn("Dropping frame", "peer", l.id, "err", err)
			return
		}
		m.mu.Lock()
		name := l.name
		m.mu.Unlock()
		m.emit(Event{Kind: PeerText, Peer: l.id, Name: name, Body: p.Body})

	default:
		m.log.Warn("Dropping frame", "peer", l.id, "err", WrapError("receive", ErrUnexpectedFrame, f.Type))
	}
}

// Connect opens a link to id by sending it an offer.
func (m *Mesh) Connect(id string) error {
	m.mu.Lock()
	l, err := m.getOrCreate(id)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	dc, err := createChatChannel(l.pc)
	if err != nil {
		return err
	}
	m.attach(l, dc)

	offer, err := l.pc.CreateOffer(nil)
	if err != nil {
		return NewPeerError("create offer", id, err)
	}
	if err := l.pc.SetLocalDescription(offer); err != nil {
		return NewPeerError("set local description", id, err)
	}
	if err := m.signal.Offer(m.room, id, offer); err != nil {
		return NewPeerError("send offer", id, err)
	}
	return nil
}

// HandleOffer answers an offer from id.
func (m *Mesh) HandleOffer(id string, body json.RawMessage) error {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(body, &desc); err != nil {
		return NewPeerError("parse offer", id, err)
	}

	m.mu.Lock()
	l, err := m.getOrCreate(id)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if err := m.setRemote(l, desc); err != nil {
		return err
	}

	answer, err := l.pc.CreateAnswer(nil)
	if err != nil {
		return NewPeerError("create answer", id, err)
	}
	if err := l.pc.SetLocalDescription(answer); err != nil {
		return NewPeerError("set local description", id, err)
	}
	if err := m.signal.Answer(m.room, id, answer); err != nil {
		return NewPeerError("send answer", id, err)
	}
	return nil
}

// HandleAnswer completes a handshake started by Connect.
func (m *Mesh) HandleAnswer(id string, body json.RawMessage) error {
	var desc webrtc.SessionDescription
	if err := json.Unmarshal(body, &desc); err != nil {
		return NewPeerError("parse answer", id, err)
	}

	m.mu.Lock()
	l, ok := m.links[id]
	m.mu.Unlock()
	if !ok {
		return NewPeerError("handle answer", id, ErrUnknownPeer)
	}
	return m.setRemote(l, desc)
}

// HandleCandidate adds a remote candidate, queueing it until the remote
// description is known.
func (m *Mesh) HandleCandidate(id string, body json.RawMessage) error {
	var cand webrtc.ICECandidateInit
	if err := json.Unmarshal(body, &cand); err != nil {
		return NewPeerError("parse ICE candidate", id, err)
	}

	m.mu.Lock()
	l, err := m.getOrCreate(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !l.remoteSet {
		l.pending = append(l.pending, cand)
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if err := l.pc.AddICECandidate(cand); err != nil {
		return NewPeerError("add ICE candidate", id, err)
	}
	return nil
}

func (m *Mesh) setRemote(l *link, desc webrtc.SessionDescription) error {
	if err := l.pc.SetRemoteDescription(desc); err != nil {
		return NewPeerError("set remote description", l.id, err)
	}

	m.mu.Lock()
	l.remoteSet = true
	pending := l.pending
	l.pending = nil
	m.mu.Unlock()

	for _, c := range pending {
		if err := l.pc.AddICECandidate(c); err != nil {
			m.log.Debug("Failed to add queued candidate", "peer", l.id, "err", err)
		}
	}
	return nil
}

// Remove closes the link to id.
func (m *Mesh) Remove(id string) {
	m.drop(id, PeerLeft, nil)
}

func (m *Mesh) drop(id string, kind EventKind, err error) {
	m.mu.Lock()
	l, ok := m.links[id]
	delete(m.links, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	if cerr := l.pc.Close(); cerr != nil {
		m.log.Debug("Failed to close peer connection", "peer", id, "err", cerr)
	}
	m.emit(Event{Kind: kind, Peer: id, Name: l.name, Err: err})
}

// Send writes a chat line to every open peer channel and returns how many
// peers it reached.
func (m *Mesh) Send(text string) int {
	m.mu.Lock()
	channels := make([]*webrtc.DataChannel, 0, len(m.links))
	for _, l := range m.links {
		if l.dc != nil {
			channels = append(channels, l.dc)
		}
	}
	m.mu.Unlock()

	sent := 0
	for _, dc := range channels {
		if err := sendFrame(dc, FrameText, TextPayload{Body: text}); err == nil {
			sent++
		}
	}
	return sent
}

// Close tears down every link.
func (m *Mesh) Close() {
	m.mu.Lock()
	m.closed = true
	links := m.links
	m.links = make(map[string]*link)
	m.mu.Unlock()

	for _, l := range links {
		l.pc.Close()
	}
}

// Run drives the mesh from relay events until ctx ends or the relay
// connection drops.
func (m *Mesh) Run(ctx context.Context, h *sigclient.Handler) error {
	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()

		case members, ok := <-h.UserList:
			if !ok {
				return ErrSignalingClosed
			}
			for _, p := range members {
				if err := m.Connect(p.ID); err != nil {
					m.log.Warn("Failed to connect peer", "peer", p.ID, "err", err)
				}
			}

		case offer, ok := <-h.Offer:
			if !ok {
				return ErrSignalingClosed
			}
			err = m.HandleOffer(offer.From, offer.Offer)

		case answer, ok := <-h.Answer:
			if !ok {
				return ErrSignalingClosed
			}
			err = m.HandleAnswer(answer.From, answer.Answer)

		case cand, ok := <-h.Candidate:
			if !ok {
				return ErrSignalingClosed
			}
			err = m.HandleCandidate(cand.From, cand.Candidate)

		case id, ok := <-h.UserLeft:
			if !ok {
				return ErrSignalingClosed
			}
			m.Remove(id)

		case room, ok := <-h.Full:
			if !ok {
				return ErrSignalingClosed
			}
			return WrapError("join", signaling.ErrRoomFull, room)
		}

		if err != nil && !errors.Is(err, ErrPeerDisconnected) {
			m.log.Warn("Signal failed", "err", err)
		}
	}
}
