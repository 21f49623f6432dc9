// internal/repository/memory/users_repo.go
package memory

import (
	"slices"
	"sync"

	"github.com/baharkarakas/user-directory/internal/models"
	"github.com/baharkarakas/user-directory/internal/repository"
)

type usersRepo struct {
	mu sync.RWMutex

	lastID     int64
	byID       map[int64]models.User
	byUsername map[string]int64
	byEmail    map[string]int64
}

func NewUsers() repository.Users {
	return &usersRepo{
		byID:       map[int64]models.User{},
		byUsername: map[string]int64{},
		byEmail:    map[string]int64{},
	}
}

func (r *usersRepo) NextID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID()
}

func (r *usersRepo) Save(u models.User) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(u)
}

func (r *usersRepo) FindByID(id int64) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByID(id)
}

func (r *usersRepo) FindByUsername(username string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByUsername(username)
}

func (r *usersRepo) FindByEmail(normalizedEmail string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findByEmail(normalizedEmail)
}

func (r *usersRepo) Delete(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delete(id)
}

func (r *usersRepo) All() []models.User {
	r.mu.RLock()
	out := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	r.mu.RUnlock()

	// ids are handed out monotonically, so id order is insertion order
	slices.SortFunc(out, func(a, b models.User) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

func (r *usersRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *usersRepo) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID = 0
	clear(r.byID)
	clear(r.byUsername)
	clear(r.byEmail)
}

func (r *usersRepo) WithTx(fn func(tx repository.UsersTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(txView{r})
}

// --- unlocked internals, callers hold r.mu ---

func (r *usersRepo) nextID() int64 {
	r.lastID++
	return r.lastID
}

func (r *usersRepo) save(u models.User) models.User {
	if prev, ok := r.byID[u.ID]; ok {
		if prev.Username != u.Username {
			delete(r.byUsername, prev.Username)
		}
		if prev.Email != u.Email {
			delete(r.byEmail, prev.Email)
		}
	}
	if u.ID > r.lastID {
		r.lastID = u.ID
	}
	r.byID[u.ID] = u
	r.byUsername[u.Username] = u.ID
	r.byEmail[u.Email] = u.ID
	return u
}

func (r *usersRepo) findByID(id int64) (models.User, bool) {
	u, ok := r.byID[id]
	return u, ok
}

func (r *usersRepo) findByUsername(username string) (models.User, bool) {
	id, ok := r.byUsername[username]
	if !ok {
		return models.User{}, false
	}
	return r.findByID(id)
}

func (r *usersRepo) findByEmail(normalizedEmail string) (models.User, bool) {
	id, ok := r.byEmail[normalizedEmail]
	if !ok {
		return models.User{}, false
	}
	return r.findByID(id)
}

func (r *usersRepo) delete(id int64) bool {
	u, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	delete(r.byUsername, u.Username)
	delete(r.byEmail, u.Email)
	return true
}

// txView exposes the unlocked operations to a WithTx callback.
type txView struct{ r *usersRepo }

func (t txView) NextID() int64                  { return t.r.nextID() }
func (t txView) Save(u models.User) models.User { return t.r.save(u) }
func (t txView) Delete(id int64) bool           { return t.r.delete(id) }

func (t txView) FindByID(id int64) (models.User, bool) { return t.r.findByID(id) }

func (t txView) FindByUsername(username string) (models.User, bool) {
	return t.r.findByUsername(username)
}

func (t txView) FindByEmail(normalizedEmail string) (models.User, bool) {
	return t.r.findByEmail(normalizedEmail)
}
