package app

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/domain"
)

const minPasswordLen = 8

type UserService struct {
	repo domain.UserRepository
	cost int
}

// NewUserService; cost <= 0 uses bcrypt.DefaultCost.
func NewUserService(r domain.UserRepository, cost int) *UserService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &UserService{repo: r, cost: cost}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: bad email", domain.ErrInvalidInput)
	}
	return email, nil
}

func (s *UserService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	if len(password) < minPasswordLen {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	u, err := s.repo.Create(ctx, domain.User{Email: email, HashedPassword: string(hash)})
	if err != nil {
		return domain.User{}, storageErr(err, "create user", 0)
	}
	return u, nil
}

// Verify checks credentials. Unknown email and wrong password look the same to the caller.
func (s *UserService) Verify(ctx context.Context, email, password string) (domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.User{}, domain.ErrUnauthorized
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrUnauthorized
	}
	if err != nil {
		return domain.User{}, storageErr(err, "get user by email", 0)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return domain.User{}, domain.ErrUnauthorized
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.User{}, storageErr(err, "get user", id)
	}
	return u, nil
}

// Delete is admin-only. The user's bookings are removed with the user.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, id int64) (domain.User, error) {
	if !actor.Admin {
		return domain.User{}, domain.ErrForbidden
	}
	u, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domain.User{}, storageErr(err, "delete user", id)
	}
	return u, nil
}
