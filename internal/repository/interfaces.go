package repository

import (
	"github.com/baharkarakas/user-directory/internal/models"
)

// UsersTx is the set of store operations usable inside WithTx. Outside a
// transaction each call is atomic on its own.
type UsersTx interface {
	NextID() int64
	Save(u models.User) models.User
	FindByID(id int64) (models.User, bool)
	FindByUsername(username string) (models.User, bool)
	FindByEmail(normalizedEmail string) (models.User, bool)
	Delete(id int64) bool
}

type Users interface {
	UsersTx

	All() []models.User
	Count() int

	// Clear drops every record and resets the id counter. Test harnesses only.
	Clear()

	// WithTx runs fn with exclusive access to the store, so a uniqueness
	// check and the write that depends on it cannot interleave with
	// another mutation.
	WithTx(fn func(tx UsersTx) error) error
}
