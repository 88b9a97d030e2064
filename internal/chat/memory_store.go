package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps chat data in process. It backs tests and runs the server
// when MongoDB is unreachable.
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[string]Room
	messages map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]Room),
		messages: make(map[string][]Message),
	}
}

func (s *MemoryStore) SaveMessage(_ context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SendTime.IsZero() {
		msg.SendTime = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.RoomID] = append(s.messages[msg.RoomID], *msg)
	if room, ok := s.rooms[msg.RoomID]; ok {
		room.LastMsg = msg.Text
		room.UpdatedAt = msg.SendTime
		s.rooms[msg.RoomID] = room
	}
	return nil
}

func (s *MemoryStore) History(_ context.Context, roomID string, page, pageSize int) ([]Message, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.messages[roomID]
	total := len(all)
	// stored oldest first, pages count back from the newest
	end := total - (page-1)*pageSize
	if end <= 0 {
		return []Message{}, int64(total), nil
	}
	start := end - pageSize
	if start < 0 {
		start = 0
	}

	msgs := make([]Message, end-start)
	copy(msgs, all[start:end])
	return msgs, int64(total), nil
}

func (s *MemoryStore) UpsertRoom(_ context.Context, room Room) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.rooms[room.ID]; ok {
		return &existing, nil
	}
	if room.UpdatedAt.IsZero() {
		room.UpdatedAt = time.Now()
	}
	s.rooms[room.ID] = room
	return &room, nil
}

func (s *MemoryStore) GetRoom(_ context.Context, roomID string) (*Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

func (s *MemoryStore) ListRooms(_ context.Context, userID uint) ([]Room, error) {
	s.mu.RLock()
	rooms := []Room{}
	for _, r := range s.rooms {
		if r.HasMember(userID) {
			rooms = append(rooms, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].UpdatedAt.After(rooms[j].UpdatedAt)
	})
	return rooms, nil
}

func (s *MemoryStore) DeleteRoomsByUser(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.rooms {
		if r.HasMember(userID) {
			delete(s.rooms, id)
			delete(s.messages, id)
		}
	}
	delete(s.messages, SystemRoomID(userID))
	return nil
}
