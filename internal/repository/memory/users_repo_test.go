package memory

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/user-directory/internal/models"
	"github.com/baharkarakas/user-directory/internal/repository"
)

func newUser(id int64, username, email string) models.User {
	return models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "hash-" + username,
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUsers_NextIDIsMonotonicAndNeverReused(t *testing.T) {
	r := NewUsers()

	id1 := r.NextID()
	r.Save(newUser(id1, "alice", "a@x.com"))
	id2 := r.NextID()
	r.Save(newUser(id2, "bob", "b@x.com"))
	require.Equal(t, int64(1), id1)
	require.Equal(t, int64(2), id2)

	require.True(t, r.Delete(id2))
	assert.Equal(t, int64(3), r.NextID())
}

func TestUsers_SaveWithHigherIDAdvancesCounter(t *testing.T) {
	r := NewUsers()
	r.Save(newUser(10, "alice", "a@x.com"))
	assert.Equal(t, int64(11), r.NextID())
}

func TestUsers_Lookups(t *testing.T) {
	r := NewUsers()
	u := r.Save(newUser(r.NextID(), "alice", "a@x.com"))

	got, ok := r.FindByID(u.ID)
	require.True(t, ok)
	assert.Equal(t, u, got)

	got, ok = r.FindByUsername("alice")
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)

	_, ok = r.FindByUsername("Alice")
	assert.False(t, ok, "username lookup is exact")

	got, ok = r.FindByEmail("a@x.com")
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)

	_, ok = r.FindByID(99)
	assert.False(t, ok)
	_, ok = r.FindByEmail("nobody@x.com")
	assert.False(t, ok)
}

func TestUsers_SaveReindexesChangedFields(t *testing.T) {
	r := NewUsers()
	u := r.Save(newUser(r.NextID(), "alice", "a@x.com"))

	u.Username = "alice2"
	u.Email = "a2@x.com"
	r.Save(u)

	_, ok := r.FindByUsername("alice")
	assert.False(t, ok)
	_, ok = r.FindByEmail("a@x.com")
	assert.False(t, ok)

	got, ok := r.FindByUsername("alice2")
	require.True(t, ok)
	assert.Equal(t, "a2@x.com", got.Email)
	assert.Equal(t, 1, r.Count())
}

func TestUsers_DeleteRemovesIndexes(t *testing.T) {
	r := NewUsers()
	u := r.Save(newUser(r.NextID(), "alice", "a@x.com"))

	require.True(t, r.Delete(u.ID))
	assert.False(t, r.Delete(u.ID))

	_, ok := r.FindByUsername("alice")
	assert.False(t, ok)
	_, ok = r.FindByEmail("a@x.com")
	assert.False(t, ok)
	assert.Zero(t, r.Count())
}

func TestUsers_AllIsInIDOrder(t *testing.T) {
	r := NewUsers()
	for _, name := range []string{"carol", "alice", "bob", "dave"} {
		r.Save(newUser(r.NextID(), name, name+"@x.com"))
	}
	r.Delete(2)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 3, 4}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestUsers_Clear(t *testing.T) {
	r := NewUsers()
	r.Save(newUser(r.NextID(), "alice", "a@x.com"))
	r.Save(newUser(r.NextID(), "bob", "b@x.com"))

	r.Clear()

	assert.Zero(t, r.Count())
	assert.Empty(t, r.All())
	assert.Equal(t, int64(1), r.NextID())
}

func TestUsers_WithTxPropagatesError(t *testing.T) {
	r := NewUsers()
	boom := errors.New("boom")

	err := r.WithTx(func(tx repository.UsersTx) error {
		tx.Save(newUser(tx.NextID(), "alice", "a@x.com"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	// no rollback: writes made before the error stay
	assert.Equal(t, 1, r.Count())
}

func TestUsers_WithTxSerializesCheckThenWrite(t *testing.T) {
	r := NewUsers()
	const workers = 32

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.WithTx(func(tx repository.UsersTx) error {
				if _, taken := tx.FindByEmail("same@x.com"); taken {
					return nil
				}
				id := tx.NextID()
				tx.Save(newUser(id, "user", "same@x.com"))
				mu.Lock()
				created++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, r.Count())
}
