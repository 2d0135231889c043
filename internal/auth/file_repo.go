package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileState struct {
	Users    map[string]User    `json:"users"`    // by user id
	Sessions map[string]Session `json:"sessions"` // by session id
}

func newFileState() fileState {
	return fileState{
		Users:    map[string]User{},
		Sessions: map[string]Session{},
	}
}

// FileRepo persists users and sessions as one JSON snapshot.
type FileRepo struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	r := &FileRepo{
		path: filepath.Join(dataDir, "auth.json"),
		s:    newFileState(),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepo) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.s = newFileState()
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]User{}
	}
	if loaded.Sessions == nil {
		loaded.Sessions = map[string]Session{}
	}
	r.s = loaded
	return nil
}

func (r *FileRepo) saveLocked() error {
	b, err := json.MarshalIndent(r.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, b, 0o600)
}

func (r *FileRepo) CreateUser(u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, have := range r.s.Users {
		if have.Email == u.Email {
			return ErrEmailTaken
		}
	}
	r.s.Users[u.ID] = u
	return r.saveLocked()
}

func (r *FileRepo) UserByEmail(email string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.s.Users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}

func (r *FileRepo) UserByID(id string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.s.Users[id]
	return u, ok
}

func (r *FileRepo) PutSession(s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.s.Sessions[s.ID] = s
	return r.saveLocked()
}

func (r *FileRepo) GetSession(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.s.Sessions[id]
	return s, ok
}

func (r *FileRepo) DeleteSession(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.s.Sessions, id)
	return r.saveLocked()
}

// PruneSessions drops expired sessions. Called opportunistically; losing
// the race just means an extra record until the next prune.
func (r *FileRepo) PruneSessions(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for id, s := range r.s.Sessions {
		if now.After(s.ExpiresAt) {
			delete(r.s.Sessions, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.saveLocked()
}
