package repository

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/waygalih/suratdesa/internal/models"
)

// MemorySubmissionStore keeps submissions in process memory. It backs
// STORE_DRIVER=memory for local development and the HTTP tests.
type MemorySubmissionStore struct {
	mu     sync.Mutex
	nextID int
	docs   map[models.RecordPath]models.Submission
	order  []models.RecordPath
}

func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{docs: map[models.RecordPath]models.Submission{}}
}

func (m *MemorySubmissionStore) FindAll(ctx context.Context) ([]models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Submission, 0, len(m.order))
	for _, p := range m.order {
		out = append(out, cloneSubmission(m.docs[p]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := out[i].TanggalPengajuan.Time()
		tj, _ := out[j].TanggalPengajuan.Time()
		return ti.After(tj)
	})
	return out, nil
}

func (m *MemorySubmissionStore) FindByPath(ctx context.Context, path models.RecordPath) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneSubmission(sub)
	return &c, nil
}

func (m *MemorySubmissionStore) UpdateStatus(ctx context.Context, path models.RecordPath, status models.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.docs[path]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	m.docs[path] = sub
	return nil
}

func (m *MemorySubmissionStore) Create(ctx context.Context, sub *models.Submission) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := cloneSubmission(*sub)
	stored.ID = strconv.Itoa(m.nextID)
	p := stored.Path()
	m.docs[p] = stored
	m.order = append(m.order, p)
	return stored.ID, nil
}

func cloneSubmission(s models.Submission) models.Submission {
	fields := make(map[string]any, len(s.Fields))
	for k, v := range s.Fields {
		fields[k] = v
	}
	s.Fields = fields
	if s.Lampiran != nil {
		lampiran := make(map[string]string, len(s.Lampiran))
		for k, v := range s.Lampiran {
			lampiran[k] = v
		}
		s.Lampiran = lampiran
	}
	return s
}

// MemoryUserStore is the in-process UserStore.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID int
	users  map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[string]models.User{}}
}

func (m *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryUserStore) Create(ctx context.Context, user *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return "", ErrDuplicate
		}
	}
	m.nextID++
	id := strconv.Itoa(m.nextID)
	u := *user
	u.ID = id
	m.users[id] = u
	return id, nil
}
