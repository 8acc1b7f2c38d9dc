/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"

	"github.com/Seednode/cranium/games/charades"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const sendBuffer = 32

type Client struct {
	id      charades.ConnID
	conn    *websocket.Conn
	send    chan any
	limiter *rate.Limiter
}

// Hub tracks open connections and which game rooms they are subscribed to.
// Sends never block: a client whose buffer is full is dropped, and its pumps
// wind down on their own.
type Hub struct {
	mu      sync.Mutex
	clients map[charades.ConnID]*Client
	rooms   map[string]map[charades.ConnID]struct{}
}

func newHub() *Hub {
	return &Hub{
		clients: make(map[charades.ConnID]*Client),
		rooms:   make(map[string]map[charades.ConnID]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.id] = c
}

func (h *Hub) unregister(id charades.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *Client) {
	delete(h.clients, c.id)
	for code, members := range h.rooms {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
	close(c.send)
}

func (h *Hub) deliverLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		h.dropLocked(c)
	}
}

// Subscribe moves conn into the room for code. A connection is in at most one
// room.
func (h *Hub) Subscribe(code string, conn charades.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; !ok {
		return
	}

	for other, members := range h.rooms {
		if other == code {
			continue
		}
		delete(members, conn)
		if len(members) == 0 {
			delete(h.rooms, other)
		}
	}

	members, ok := h.rooms[code]
	if !ok {
		members = make(map[charades.ConnID]struct{})
		h.rooms[code] = members
	}
	members[conn] = struct{}{}
}

func (h *Hub) Unicast(conn charades.ConnID, msg any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[conn]; ok {
		h.deliverLocked(c, msg)
	}
}

func (h *Hub) Broadcast(code string, msg any, except charades.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id := range h.rooms[code] {
		if id == except {
			continue
		}
		if c, ok := h.clients[id]; ok {
			h.deliverLocked(c, msg)
		}
	}
}

// Release forgets a room. Its connections stay open and may join another game.
func (h *Hub) Release(code string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.rooms, code)
}

func (h *Hub) members(code string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.rooms[code])
}
