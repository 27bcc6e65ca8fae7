package store

import (
	"context"
	"strings"
	"sync"

	"tekfest/internal/identity/models"
	id "tekfest/pkg/domain"
	"tekfest/pkg/platform/sentinel"
)

// InMemoryAccountStore is the test and local-development implementation.
// Emails are compared case-insensitively.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]models.Account
	byEmail  map[string]id.AccountID
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		accounts: make(map[id.AccountID]models.Account),
		byEmail:  make(map[string]id.AccountID),
	}
}

func (s *InMemoryAccountStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(account.Email)
	if _, ok := s.byEmail[key]; ok {
		return sentinel.ErrAlreadyExists
	}
	s.accounts[account.ID] = *account
	s.byEmail[key] = account.ID
	return nil
}

func (s *InMemoryAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	account := s.accounts[accountID]
	return &account, nil
}

func (s *InMemoryAccountStore) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &account, nil
}
