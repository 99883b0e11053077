package repository

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/Kosench/tinyapp/internal/errors"
	"github.com/Kosench/tinyapp/internal/model"
)

// MemoryURLRepository хранит ссылки в памяти процесса.
// Все операции сериализуются одним RWMutex, порядок перечисления - порядок вставки.
type MemoryURLRepository struct {
	mu    sync.RWMutex
	urls  map[string]model.URL
	order []string
}

func NewMemoryURLRepository() *MemoryURLRepository {
	return &MemoryURLRepository{
		urls: make(map[string]model.URL),
	}
}

func (r *MemoryURLRepository) Put(ctx context.Context, url *model.URL) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.urls[url.ShortCode]; !exists {
		r.order = append(r.order, url.ShortCode)
	}
	r.urls[url.ShortCode] = *url

	return nil
}

func (r *MemoryURLRepository) Create(ctx context.Context, url *model.URL) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.urls[url.ShortCode]; exists {
		return apperrors.ErrShortCodeExists
	}

	r.order = append(r.order, url.ShortCode)
	r.urls[url.ShortCode] = *url

	return nil
}

func (r *MemoryURLRepository) Get(ctx context.Context, shortCode string) (*model.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, exists := r.urls[shortCode]
	if !exists {
		return nil, fmt.Errorf("URL with short code '%s': %w", shortCode, apperrors.ErrURLNotFound)
	}

	return &url, nil
}

func (r *MemoryURLRepository) Exists(ctx context.Context, shortCode string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.urls[shortCode]
	return exists, nil
}

func (r *MemoryURLRepository) Update(ctx context.Context, shortCode, longURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	url, exists := r.urls[shortCode]
	if !exists {
		return fmt.Errorf("URL with short code '%s': %w", shortCode, apperrors.ErrURLNotFound)
	}

	url.LongURL = longURL
	r.urls[shortCode] = url

	return nil
}

func (r *MemoryURLRepository) Delete(ctx context.Context, shortCode string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.urls[shortCode]; !exists {
		return fmt.Errorf("URL with short code '%s': %w", shortCode, apperrors.ErrURLNotFound)
	}

	delete(r.urls, shortCode)
	for i, code := range r.order {
		if code == shortCode {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func (r *MemoryURLRepository) List(ctx context.Context) ([]model.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshot(), nil
}

func (r *MemoryURLRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.URL, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return URLsForUser(ownerID, r.snapshot()), nil
}

// snapshot копирует записи в порядке вставки; вызывать под блокировкой
func (r *MemoryURLRepository) snapshot() []model.URL {
	urls := make([]model.URL, 0, len(r.order))
	for _, code := range r.order {
		urls = append(urls, r.urls[code])
	}
	return urls
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
	order []string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]model.User),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID]; exists {
		return apperrors.ErrUserIDExists
	}
	if _, found := r.findByEmail(user.Email); found {
		return apperrors.ErrEmailTaken
	}

	r.users[user.ID] = *user
	r.order = append(r.order, user.ID)

	return nil
}

// FindByEmail - линейный поиск, индекса по email нет
func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, found := r.findByEmail(email)
	if !found {
		return nil, apperrors.ErrUserNotFound
	}

	return &user, nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, fmt.Errorf("user '%s': %w", id, apperrors.ErrUserNotFound)
	}

	return &user, nil
}

func (r *MemoryUserRepository) findByEmail(email string) (model.User, bool) {
	if email == "" {
		return model.User{}, false
	}

	for _, id := range r.order {
		if user := r.users[id]; user.Email == email {
			return user, true
		}
	}

	return model.User{}, false
}

type MemoryVisitRepository struct {
	mu     sync.RWMutex
	visits []model.Visit
}

func NewMemoryVisitRepository() *MemoryVisitRepository {
	return &MemoryVisitRepository{}
}

func (r *MemoryVisitRepository) Append(ctx context.Context, visit model.Visit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.visits = append(r.visits, visit)
	return nil
}

func (r *MemoryVisitRepository) VisitsFor(ctx context.Context, shortCode string) ([]model.Visit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.visitsFor(shortCode), nil
}

func (r *MemoryVisitRepository) UniqueVisitorCount(ctx context.Context, shortCode string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return CountUniqueVisitors(r.visitsFor(shortCode)), nil
}

func (r *MemoryVisitRepository) DeleteFor(ctx context.Context, shortCode string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.visits[:0]
	for _, v := range r.visits {
		if v.ShortCode != shortCode {
			kept = append(kept, v)
		}
	}
	r.visits = kept

	return nil
}

func (r *MemoryVisitRepository) visitsFor(shortCode string) []model.Visit {
	visits := make([]model.Visit, 0)
	for _, v := range r.visits {
		if v.ShortCode == shortCode {
			visits = append(visits, v)
		}
	}
	return visits
}
