package memory

import (
	repo "github.com/baharkarakas/user-directory/internal/repository"
)

type Repositories struct {
	Users repo.Users
}

func NewRepositories() Repositories {
	return Repositories{
		Users: NewUsers(),
	}
}
