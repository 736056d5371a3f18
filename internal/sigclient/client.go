// Package sigclient is the peer side of the signaling relay: a websocket
// client plus a Handler that fans inbound events out to typed channels.
package sigclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rosaguta/DIV-C-Server/internal/signaling"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	outgoingBuffer = 64
)

// ErrClosed is returned when sending on a closed client.
var ErrClosed = errors.New("signaling client closed")

// Client manages the WebSocket connection to the signaling server.
type Client struct {
	conn     *websocket.Conn
	incoming chan *signaling.Message
	outgoing chan *signaling.Message
	done     chan struct{}

	closeOnce sync.Once
	log       *slog.Logger
}

// Dial connects to the relay at serverURL and starts the pumps.
func Dial(ctx context.Context, serverURL string, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	dialer := *websocket.DefaultDialer
	dialer.NetDialContext = dialContext
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &Client{
		conn:     conn,
		incoming: make(chan *signaling.Message, outgoingBuffer),
		outgoing: make(chan *signaling.Message, outgoingBuffer),
		done:     make(chan struct{}),
		log:      log.With("component", "sigclient"),
	}

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()
	return c, nil
}

// readPump reads messages from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var msg signaling.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
			default:
				c.log.Debug("Read failed", "err", err)
			}
			return
		}

		select {
		case c.incoming <- &msg:
		case <-c.done:
			return
		}
	}
}

// writePump writes messages to the WebSocket connection and sends periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.Debug("Write failed", "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Send queues msg for the server.
func (c *Client) Send(msg *signaling.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.outgoing <- msg:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Client) emit(event, room string, payload any) error {
	msg, err := signaling.NewMessage(event, room, payload)
	if err != nil {
		return err
	}
	return c.Send(msg)
}

// Join asks to enter room.
func (c *Client) Join(room string) error {
	return c.emit(signaling.EventJoin, room, nil)
}

// Ready announces local media to room.
func (c *Client) Ready(room string) error {
	return c.emit(signaling.EventReady, room, nil)
}

// Leave exits room.
func (c *Client) Leave(room string) error {
	return c.emit(signaling.EventLeave, room, nil)
}

// SendText posts a chat line to room.
func (c *Client) SendText(room, text string) error {
	return c.emit(signaling.EventMessage, room, text)
}

// FetchHistory requests room's chat log; it arrives on Handler.History.
func (c *Client) FetchHistory(room string) error {
	return c.emit(signaling.EventMessages, room, nil)
}

// Offer sends a session description to target.
func (c *Client) Offer(room, target string, sdp any) error {
	body, err := marshalBody(sdp)
	if err != nil {
		return err
	}
	return c.emit(signaling.EventOffer, room, signaling.OfferPayload{Offer: body, TargetID: target})
}

// Answer replies to an offer from target.
func (c *Client) Answer(room, target string, sdp any) error {
	body, err := marshalBody(sdp)
	if err != nil {
		return err
	}
	return c.emit(signaling.EventAnswer, room, signaling.AnswerPayload{Answer: body, TargetID: target})
}

// Candidate trickles an ICE candidate to target.
func (c *Client) Candidate(room, target string, candidate any) error {
	body, err := marshalBody(candidate)
	if err != nil {
		return err
	}
	return c.emit(signaling.EventICECandidate, room, signaling.CandidatePayload{Candidate: body, TargetID: target})
}

// Incoming returns the channel for receiving messages. It is closed when
// the connection ends.
func (c *Client) Incoming() <-chan *signaling.Message {
	return c.incoming
}

// Done is closed by Close.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the WebSocket connection and cleans up resources.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
