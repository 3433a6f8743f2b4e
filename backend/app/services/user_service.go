package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"task-tracker/backend/app/dto"
	"task-tracker/backend/app/models"
	"task-tracker/backend/app/repo"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users *repo.UserRepository
	// HashCost is the bcrypt cost for new hashes.
	HashCost int
	// dummyHash is compared against when a login names an unknown user.
	dummyHash []byte
	dummyOnce sync.Once
}

func NewUserService(users *repo.UserRepository) *UserService {
	return &UserService{users: users, HashCost: bcrypt.DefaultCost}
}

func (s *UserService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// EnsureAdmin creates the bootstrap admin unless the username already exists.
func (s *UserService) EnsureAdmin(name, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	count, err := s.users.CountByUsername(username)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if name == "" {
		name = username
	}
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	return true, s.users.Create(&models.User{Name: name, Username: username, PasswordHash: hash, Role: models.RoleAdmin})
}

func validateNewUser(req dto.RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Username) == "" || req.Password == "" || req.Role == "" {
		return invalid("missing fields")
	}
	if !models.ValidRole(req.Role) {
		return invalid("invalid role")
	}
	return nil
}

// CreateUser stores a new user with a bcrypt hash of the password. A
// concurrent insert that slips past the username check still fails on the
// unique index and maps to Conflict.
func (s *UserService) CreateUser(req dto.RegisterRequest) (uint, error) {
	if err := validateNewUser(req); err != nil {
		return 0, err
	}
	username := strings.TrimSpace(req.Username)
	count, err := s.users.CountByUsername(username)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, conflict("username already exists")
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return 0, err
	}
	u := &models.User{Name: strings.TrimSpace(req.Name), Username: username, PasswordHash: hash, Role: req.Role}
	if err := s.users.Create(u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return 0, conflict("username already exists")
		}
		return 0, err
	}
	return u.ID, nil
}

// ValidateCredentials trims the username the same way CreateUser does.
func (s *UserService) ValidateCredentials(username, password string) (*models.User, error) {
	u, err := s.users.FindByUsername(strings.TrimSpace(username))
	if errors.Is(err, repo.ErrNotFound) {
		s.burnCompare(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) burnCompare(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("task-tracker"), s.HashCost)
	})
	_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
}

func (s *UserService) FindByID(id uint) (*models.User, error) {
	u, err := s.users.FindByID(id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("user not found")
	}
	return u, err
}

func (s *UserService) ListBrief() ([]dto.UserBrief, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserBrief, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserBrief{ID: u.ID, Name: u.Name, Username: u.Username})
	}
	return out, nil
}

func (s *UserService) List() ([]dto.UserResponse, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.UserResponse{ID: u.ID, Name: u.Name, Username: u.Username, Role: u.Role})
	}
	return out, nil
}

// UpdateUser overwrites name, username and role. The password is untouched.
func (s *UserService) UpdateUser(id uint, req dto.UpdateUserRequest) error {
	name, username := strings.TrimSpace(req.Name), strings.TrimSpace(req.Username)
	if name == "" || username == "" || req.Role == "" {
		return invalid("all fields are required")
	}
	if !models.ValidRole(req.Role) {
		return invalid("invalid role")
	}
	if _, err := s.FindByID(id); err != nil {
		return err
	}
	taken, err := s.users.UsernameTakenByOther(username, id)
	if err != nil {
		return err
	}
	if taken {
		return conflict("username is used by another user")
	}
	err = s.users.Update(id, map[string]any{"name": name, "username": username, "role": req.Role})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return notFound("user not found")
	case errors.Is(err, repo.ErrDuplicate):
		return conflict("username is used by another user")
	}
	return err
}

func (s *UserService) DeleteUser(id uint) error {
	err := s.users.Delete(id)
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("user not found")
	}
	return err
}
