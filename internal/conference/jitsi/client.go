package jitsi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	pubnub "github.com/pubnub/go"
)

const channelPrefix = "conference-"

// Client bridges room commands and conference events over PubNub channels.
// One channel per room: "conference-<room>".
type Client struct {
	cfg      *Config
	pn       *pubnub.PubNub
	listener *pubnub.Listener

	mu    sync.Mutex
	rooms map[string]chan RoomMessage
	done  chan struct{}
}

func newClient(ctx context.Context, cfg *Config) (*Client, error) {
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PublishKey
	pnConfig.SubscribeKey = cfg.SubscribeKey
	pnConfig.SecretKey = cfg.SecretKey

	c := &Client{
		cfg:      cfg,
		pn:       pubnub.NewPubNub(pnConfig),
		listener: pubnub.NewListener(),
		rooms:    make(map[string]chan RoomMessage),
		done:     make(chan struct{}),
	}

	c.pn.AddListener(c.listener)
	go c.run()

	return c, nil
}

// JoinRoom subscribes to a room's bridge channel and returns the message
// stream for that room. Joining the same room twice returns the existing
// stream.
func (c *Client) JoinRoom(room string) (<-chan RoomMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.rooms[room]; ok {
		return ch, nil
	}

	ch := make(chan RoomMessage, 64)
	c.rooms[room] = ch

	c.pn.Subscribe().
		Channels([]string{channelPrefix + room}).
		Execute()

	return ch, nil
}

// LeaveRoom unsubscribes from the room channel and closes its stream.
func (c *Client) LeaveRoom(room string) {
	c.mu.Lock()
	ch, ok := c.rooms[room]
	if ok {
		delete(c.rooms, room)
	}
	c.mu.Unlock()

	if !ok {
		return
	}

	c.pn.Unsubscribe().
		Channels([]string{channelPrefix + room}).
		Execute()

	close(ch)
}

// Publish sends a message on the room's bridge channel.
func (c *Client) Publish(ctx context.Context, room string, msg RoomMessage) error {
	msg.Room = room

	_, _, err := c.pn.Publish().
		Channel(channelPrefix + room).
		Message(msg).
		Execute()
	if err != nil {
		return fmt.Errorf("jitsi: publish to %s: %w", room, err)
	}
	return nil
}

func (c *Client) run() {
	for {
		select {
		case message := <-c.listener.Message:
			c.route(message)
		case <-c.listener.Status:
			// drained so the SDK never blocks on status delivery
		case <-c.listener.Presence:
		case <-c.done:
			return
		}
	}
}

func (c *Client) route(message *pubnub.PNMessage) {
	room := strings.TrimPrefix(message.Channel, channelPrefix)
	if room == message.Channel {
		return
	}

	data, ok := message.Message.(map[string]interface{})
	if !ok {
		return
	}

	jsonData, _ := json.Marshal(data)
	var msg RoomMessage
	if err := json.Unmarshal(jsonData, &msg); err != nil {
		slog.Warn("jitsi: dropping malformed room message", "room", room, "error", err)
		return
	}

	c.mu.Lock()
	ch, ok := c.rooms[room]
	c.mu.Unlock()
	if !ok {
		return
	}

	select {
	case ch <- msg:
	default:
		slog.Warn("jitsi: room stream full, dropping message", "room", room, "event", msg.Event)
	}
}

// Close tears down all room subscriptions and the PubNub connection.
func (c *Client) Close(ctx context.Context) error {
	select {
	case <-c.done:
		return nil
	default:
	}
	close(c.done)

	c.mu.Lock()
	for _, ch := range c.rooms {
		close(ch)
	}
	c.rooms = make(map[string]chan RoomMessage)
	c.mu.Unlock()

	c.pn.UnsubscribeAll()
	c.pn.Destroy()
	return nil
}
