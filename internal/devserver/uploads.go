package devserver

import (
	"sync"

	"github.com/google/uuid"
)

// uploadSession is one in-flight tus upload.
type uploadSession struct {
	id       string
	length   int64
	metadata string
	data     []byte
}

// Uploads holds in-flight and completed upload sessions in memory.
type Uploads struct {
	mu       sync.Mutex
	sessions map[string]*uploadSession
}

func NewUploads() *Uploads {
	return &Uploads{sessions: make(map[string]*uploadSession)}
}

func (u *Uploads) create(length int64, metadata string) *uploadSession {
	s := &uploadSession{
		id:       uuid.NewString(),
		length:   length,
		metadata: metadata,
		data:     make([]byte, 0, length),
	}
	u.mu.Lock()
	u.sessions[s.id] = s
	u.mu.Unlock()
	return s
}

func (u *Uploads) get(id string) (*uploadSession, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.sessions[id]
	return s, ok
}

// append adds chunk at the given offset. It reports the new offset and
// whether the offset matched the bytes already held.
func (u *Uploads) append(id string, offset int64, chunk []byte) (int64, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	s, ok := u.sessions[id]
	if !ok {
		return 0, false
	}
	if offset != int64(len(s.data)) {
		return int64(len(s.data)), false
	}
	s.data = append(s.data, chunk...)
	return int64(len(s.data)), true
}

// offset reports how many bytes of the upload the server holds.
func (u *Uploads) offset(id string) (current, length int64, ok bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	s, found := u.sessions[id]
	if !found {
		return 0, 0, false
	}
	return int64(len(s.data)), s.length, true
}
