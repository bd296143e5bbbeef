package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AuroTek-prog/smartstay-guide-backend-v1.0/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindValid_WindowBoundsInclusive(t *testing.T) {
	repo := NewMemoryCredentialsRepo()
	from := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	to := from.Add(2 * time.Hour)
	repo.Put(domain.AccessCredential{
		DeviceID:  "device-1",
		Token:     "tok-1",
		ValidFrom: from,
		ValidTo:   to,
	})

	cases := []struct {
		name  string
		now   time.Time
		found bool
	}{
		{"before window", from.Add(-time.Second), false},
		{"exactly validFrom", from, true},
		{"inside window", from.Add(time.Hour), true},
		{"exactly validTo", to, true},
		{"after window", to.Add(time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.FindValid(context.Background(), "device-1", "tok-1", tc.now)
			if tc.found {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestFindValid_MismatchedTokenOrDevice(t *testing.T) {
	repo := NewMemoryCredentialsRepo()
	now := time.Now()
	repo.Put(domain.AccessCredential{
		DeviceID:  "device-1",
		Token:     "tok-1",
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
	})

	_, err := repo.FindValid(context.Background(), "device-1", "wrong-token", now)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindValid(context.Background(), "device-2", "tok-1", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaim_SingleUse(t *testing.T) {
	repo := NewMemoryCredentialsRepo()
	now := time.Now()
	cred := repo.Put(domain.AccessCredential{
		DeviceID:  "device-1",
		Token:     "tok-1",
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
	})

	ok, err := repo.Claim(context.Background(), cred.CredentialID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Claim(context.Background(), cred.CredentialID)
	require.NoError(t, err)
	assert.False(t, ok, "second claim must lose")

	_, err = repo.FindValid(context.Background(), "device-1", "tok-1", now)
	assert.ErrorIs(t, err, ErrNotFound, "claimed credential no longer valid")
}

func TestUnclaim_RestoresUsability(t *testing.T) {
	repo := NewMemoryCredentialsRepo()
	now := time.Now()
	cred := repo.Put(domain.AccessCredential{
		DeviceID:  "device-1",
		Token:     "tok-1",
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
	})

	ok, err := repo.Claim(context.Background(), cred.CredentialID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Unclaim(context.Background(), cred.CredentialID))

	_, err = repo.FindValid(context.Background(), "device-1", "tok-1", now)
	assert.NoError(t, err, "unclaimed credential usable again")
}

// Concurrent holders of the same still-valid token: exactly one claim wins.
func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	repo := NewMemoryCredentialsRepo()
	now := time.Now()
	cred := repo.Put(domain.AccessCredential{
		DeviceID:  "device-1",
		Token:     "tok-1",
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
	})

	const callers = 50
	var wg sync.WaitGroup
	wins := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Claim(context.Background(), cred.CredentialID)
			require.NoError(t, err)
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for ok := range wins {
		if ok {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one concurrent claim must succeed")
}
