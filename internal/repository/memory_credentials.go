package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/google/uuid"
)

type MemoryCredentialsRepo struct {
	mu          sync.Mutex
	credentials map[string]*domain.AccessCredential
}

func NewMemoryCredentialsRepo() *MemoryCredentialsRepo {
	return &MemoryCredentialsRepo{credentials: map[string]*domain.AccessCredential{}}
}

// Put stores a credential, assigning an ID when missing, and returns it.
func (r *MemoryCredentialsRepo) Put(c domain.AccessCredential) domain.AccessCredential {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.CredentialID == "" {
		c.CredentialID = uuid.NewString()
	}
	stored := c
	r.credentials[c.CredentialID] = &stored
	return c
}

func (r *MemoryCredentialsRepo) Get(credentialID string) (domain.AccessCredential, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credentials[credentialID]
	if !ok {
		return domain.AccessCredential{}, false
	}
	return *c, true
}

func (r *MemoryCredentialsRepo) FindValid(_ context.Context, deviceID, token string, now time.Time) (*domain.AccessCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.credentials {
		if c.DeviceID == deviceID && c.Token == token && c.ValidAt(now) {
			out := *c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Claim performs the compare-and-set under the repo mutex: only the first
// caller observes revoked=false and flips it.
func (r *MemoryCredentialsRepo) Claim(_ context.Context, credentialID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.credentials[credentialID]
	if !ok || c.Revoked {
		return false, nil
	}
	c.Revoked = true
	return true, nil
}

func (r *MemoryCredentialsRepo) Unclaim(_ context.Context, credentialID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.credentials[credentialID]; ok {
		c.Revoked = false
	}
	return nil
}
