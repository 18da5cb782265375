package storage

import (
	"sync"
	"time"
)

// PlayerMessage is the Telegram message holding the player controls of a chat.
type PlayerMessage struct {
	ChatID    int64
	MessageID int
	SentAt    time.Time
}

// PlayerStorage remembers the last player message of every chat so that it
// can be edited or replaced.
type PlayerStorage struct {
	mu       sync.RWMutex
	messages map[int64]PlayerMessage
}

func NewPlayerStorage() *PlayerStorage {
	return &PlayerStorage{
		messages: make(map[int64]PlayerMessage),
	}
}

func (s *PlayerStorage) Get(chatID int64) (PlayerMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[chatID]
	return msg, ok
}

func (s *PlayerStorage) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, chatID)
}

// UpsertAndGetPrev stores the new player message and returns the one it replaces.
func (s *PlayerStorage) UpsertAndGetPrev(chatID int64, messageID int) (prev PlayerMessage, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.messages[chatID]

	s.messages[chatID] = PlayerMessage{
		ChatID:    chatID,
		MessageID: messageID,
		SentAt:    time.Now(),
	}

	return prev, hadPrev
}
