// Package session holds the mock government login: two keys per client,
// a role flag and a display name. There is no credential check.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	RoleKey = "auth_role"
	UserKey = "auth_user"

	RoleGovernment  = "government"
	DefaultIdentity = "gov"
)

type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

func Login(kv KV, identity string) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		identity = DefaultIdentity
	}
	kv.Set(RoleKey, RoleGovernment)
	kv.Set(UserKey, identity)
}

func Logout(kv KV) {
	kv.Remove(RoleKey)
	kv.Remove(UserKey)
}

func IsGovernment(kv KV) bool {
	role, _ := kv.Get(RoleKey)
	return role == RoleGovernment
}

// User returns the display name, empty when nobody is logged in.
func User(kv KV) string {
	user, _ := kv.Get(UserKey)
	return user
}

// Store keeps one key-value map per session ID.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]map[string]string)}
}

func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one NewID would hand out.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

func (s *Store) Session(id string) *Session {
	return &Session{store: s, id: id}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

type Session struct {
	store *Store
	id    string
}

func (sess *Session) ID() string { return sess.id }

func (sess *Session) Get(key string) (string, bool) {
	sess.store.mu.RLock()
	defer sess.store.mu.RUnlock()
	v, ok := sess.store.sessions[sess.id][key]
	return v, ok
}

func (sess *Session) Set(key, value string) {
	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()
	kv, ok := sess.store.sessions[sess.id]
	if !ok {
		kv = make(map[string]string)
		sess.store.sessions[sess.id] = kv
	}
	kv[key] = value
}

func (sess *Session) Remove(key string) {
	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()
	kv, ok := sess.store.sessions[sess.id]
	if !ok {
		return
	}
	delete(kv, key)
	if len(kv) == 0 {
		delete(sess.store.sessions, sess.id)
	}
}
