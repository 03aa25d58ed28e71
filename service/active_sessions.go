package service

import (
	"context"
	"fmt"
	"sync"

	"collector-service/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ActiveSessionIndex maps sessionKey(platform, channelId) to the id of the
// currently active voice session for that channel. It also owns a lock per
// key so join/leave on one channel never interleave; a plain read-modify-write
// on participant_count would lose updates otherwise.
type ActiveSessionIndex struct {
	mu       sync.Mutex
	sessions map[string]uuid.UUID
	keyLocks map[string]*sync.Mutex
}

func NewActiveSessionIndex() *ActiveSessionIndex {
	return &ActiveSessionIndex{
		sessions: make(map[string]uuid.UUID),
		keyLocks: make(map[string]*sync.Mutex),
	}
}

func SessionKey(platform, channelID string) string {
	return fmt.Sprintf("%s_%s", platform, channelID)
}

// LockKey serializes callers on one session key. The returned func releases
// the lock.
func (i *ActiveSessionIndex) LockKey(key string) func() {
	i.mu.Lock()
	l, ok := i.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		i.keyLocks[key] = l
	}
	i.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (i *ActiveSessionIndex) Get(key string) (uuid.UUID, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	id, ok := i.sessions[key]
	return id, ok
}

func (i *ActiveSessionIndex) Put(key string, id uuid.UUID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sessions[key] = id
}

func (i *ActiveSessionIndex) Remove(key string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.sessions, key)
}

func (i *ActiveSessionIndex) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.sessions)
}

// Rebuild loads every session with an unset end time, so a restarted process
// keeps tracking channels that were active when the previous one stopped.
func (i *ActiveSessionIndex) Rebuild(ctx context.Context, repo repository.CollectorRepository) error {
	sessions, err := repo.FindActiveVoiceSessions(ctx)
	if err != nil {
		return fmt.Errorf("load active voice sessions: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for _, s := range sessions {
		i.sessions[SessionKey(s.Platform, s.ChannelID)] = s.ID
	}

	zerolog.Ctx(ctx).Info().Int("count", len(sessions)).Msg("active session index rebuilt")
	return nil
}
