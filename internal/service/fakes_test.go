package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/brandlink-backend/internal/models"
	"github.com/ignatzorin/brandlink-backend/internal/repository"
)

// memoryStore хранит пользователей, бренды и каналы в памяти и повторяет
// ограничения схемы: уникальные имена брендов и уникальный канал на бренд/платформу/аккаунт.
type memoryStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	brands   map[uuid.UUID]*models.Brand
	channels map[uuid.UUID]*models.Channel
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[uuid.UUID]*models.User),
		brands:   make(map[uuid.UUID]*models.Brand),
		channels: make(map[uuid.UUID]*models.Channel),
	}
}

func (s *memoryStore) addUser(phone string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	u := &models.User{
		ID:          uuid.New(),
		Phone:       phone,
		DateOfBirth: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:      models.GenderFemale,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users[u.ID] = u
	return u
}

// users

func (s *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memoryStore) Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if upd.Phone != nil {
		for _, other := range s.users {
			if other.ID != id && other.Phone == *upd.Phone {
				return nil, repository.ErrPhoneTaken
			}
		}
		u.Phone = *upd.Phone
	}
	if upd.Gender != nil {
		u.Gender = *upd.Gender
	}
	if upd.DateOfBirth != nil {
		u.DateOfBirth = *upd.DateOfBirth
	}
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (s *memoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	for bid, b := range s.brands {
		if b.OwnerID == id {
			s.deleteBrandLocked(bid)
		}
	}
	return nil
}

// brands

type memoryBrands struct{ *memoryStore }

func (s memoryBrands) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Brand{}
	for _, b := range s.brands {
		if b.OwnerID == ownerID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memoryBrands) Create(ctx context.Context, brand *models.Brand) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.brands {
		if b.Name == brand.Name {
			return false, repository.ErrBrandNameTaken
		}
	}
	brand.ID = uuid.New()
	brand.CreatedAt = time.Now().Add(time.Duration(len(s.brands)) * time.Millisecond)
	brand.UpdatedAt = brand.CreatedAt
	cp := *brand
	s.brands[brand.ID] = &cp

	owner, ok := s.users[brand.OwnerID]
	if ok && owner.ActiveBrandID == nil {
		id := brand.ID
		owner.ActiveBrandID = &id
		return true, nil
	}
	return false, nil
}

func (s memoryBrands) UpdateName(ctx context.Context, id, ownerID uuid.UUID, name string) (*models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.brands[id]
	if !ok || b.OwnerID != ownerID {
		return nil, repository.ErrBrandNotFound
	}
	for _, other := range s.brands {
		if other.ID != id && other.Name == name {
			return nil, repository.ErrBrandNameTaken
		}
	}
	b.Name = name
	b.UpdatedAt = time.Now()
	cp := *b
	return &cp, nil
}

func (s memoryBrands) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.brands[id]
	if !ok || b.OwnerID != ownerID {
		return repository.ErrBrandNotFound
	}
	s.deleteBrandLocked(id)
	return nil
}

func (s *memoryStore) deleteBrandLocked(id uuid.UUID) {
	delete(s.brands, id)
	for cid, ch := range s.channels {
		if ch.BrandID == id {
			delete(s.channels, cid)
		}
	}
	for _, u := range s.users {
		if u.ActiveBrandID != nil && *u.ActiveBrandID == id {
			u.ActiveBrandID = nil
		}
	}
}

func (s memoryBrands) SetActive(ctx context.Context, userID, brandID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.brands[brandID]
	if !ok || b.OwnerID != userID {
		return repository.ErrBrandNotFound
	}
	u, ok := s.users[userID]
	if !ok {
		return repository.ErrBrandNotFound
	}
	id := brandID
	u.ActiveBrandID = &id
	return nil
}

func (s memoryBrands) GetActive(ctx context.Context, userID uuid.UUID) (*models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.ActiveBrandID == nil {
		return nil, repository.ErrNoActiveBrand
	}
	b, ok := s.brands[*u.ActiveBrandID]
	if !ok {
		return nil, repository.ErrNoActiveBrand
	}
	cp := *b
	return &cp, nil
}

// channels

type memoryChannels struct{ *memoryStore }

func (s memoryChannels) Upsert(ctx context.Context, ch *models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, existing := range s.channels {
		if existing.BrandID == ch.BrandID && existing.Platform == ch.Platform && existing.ExternalAccountID == ch.ExternalAccountID {
			existing.AccessToken = ch.AccessToken
			existing.UpdatedAt = now
			*ch = *existing
			return nil
		}
	}
	ch.ID = uuid.New()
	ch.CreatedAt = now
	ch.UpdatedAt = now
	cp := *ch
	s.channels[ch.ID] = &cp
	return nil
}

func (s memoryChannels) ListByBrand(ctx context.Context, brandID uuid.UUID) ([]models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Channel{}
	for _, ch := range s.channels {
		if ch.BrandID == brandID {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s memoryChannels) owned(id, ownerID uuid.UUID) (*models.Channel, bool) {
	ch, ok := s.channels[id]
	if !ok {
		return nil, false
	}
	b, ok := s.brands[ch.BrandID]
	if !ok || b.OwnerID != ownerID {
		return nil, false
	}
	return ch, true
}

func (s memoryChannels) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.owned(id, ownerID)
	if !ok {
		return nil, repository.ErrChannelNotFound
	}
	cp := *ch
	return &cp, nil
}

func (s memoryChannels) UpdateToken(ctx context.Context, id, ownerID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.owned(id, ownerID)
	if !ok {
		return repository.ErrChannelNotFound
	}
	ch.AccessToken = token
	ch.UpdatedAt = time.Now()
	return nil
}

func (s memoryChannels) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(id, ownerID); !ok {
		return repository.ErrChannelNotFound
	}
	delete(s.channels, id)
	return nil
}

func (s *memoryStore) channelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.channels)
}

// recordingNotifier запоминает отправленные события.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func newChannel(brandID uuid.UUID, platform, accountID string) *models.Channel {
	return &models.Channel{
		BrandID:           brandID,
		Platform:          platform,
		ExternalAccountID: accountID,
		AccessToken:       "token-" + accountID,
	}
}
