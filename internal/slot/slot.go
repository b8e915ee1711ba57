// Package slot implements the durable key-value slots the store and the
// identity provider persist into. A slot is a namespace holding a few
// independently absent JSON values.
package slot

import (
	"context"
	"strings"

	appErr "github.com/sponsorship-studio/engine/pkg/errors"
)

// Well-known keys.
const (
	KeyProjects    = "projects"
	KeyPledges     = "pledges"
	KeyCurrentUser = "currentUser"
)

// SessionPrefix prefixes the namespace of every per-session slot.
const SessionPrefix = "session:"

// ErrNotFound is returned by Get when the key was never written or was deleted.
var ErrNotFound = appErr.New(appErr.CodeNotFound, "slot key not found")

// Store is a backend holding namespaced raw values.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

// Slot binds a Store to a single namespace.
type Slot struct {
	store     Store
	namespace string
}

// New returns a slot over namespace. A nil store yields a detached slot.
func New(store Store, namespace string) *Slot {
	if store == nil {
		return nil
	}
	return &Slot{store: store, namespace: namespace}
}

// ForSession returns the slot holding a session's identity.
func ForSession(store Store, sessionID string) *Slot {
	return New(store, SessionPrefix+sessionID)
}

// IsSessionNamespace reports whether namespace belongs to a session slot.
func IsSessionNamespace(namespace string) bool {
	return strings.HasPrefix(namespace, SessionPrefix)
}

func (s *Slot) Namespace() string { return s.namespace }

func (s *Slot) Get(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, s.namespace, key)
}

func (s *Slot) Put(ctx context.Context, key string, value []byte) error {
	return s.store.Put(ctx, s.namespace, key, value)
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.namespace, key)
}
