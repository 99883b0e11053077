package repository

import (
	"context"

	"github.com/Kosench/tinyapp/internal/model"
)

// URLRepository - хранилище коротких ссылок (short code -> запись)
type URLRepository interface {
	// Put вставляет или перезаписывает запись
	Put(ctx context.Context, url *model.URL) error
	// Create вставляет запись, ErrShortCodeExists если код занят
	Create(ctx context.Context, url *model.URL) error
	Get(ctx context.Context, shortCode string) (*model.URL, error)
	Exists(ctx context.Context, shortCode string) (bool, error)
	Update(ctx context.Context, shortCode, longURL string) error
	Delete(ctx context.Context, shortCode string) error
	List(ctx context.Context) ([]model.URL, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.URL, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// VisitRepository - журнал переходов; записи стираются только вместе со ссылкой
type VisitRepository interface {
	Append(ctx context.Context, visit model.Visit) error
	VisitsFor(ctx context.Context, shortCode string) ([]model.Visit, error)
	UniqueVisitorCount(ctx context.Context, shortCode string) (int, error)
	// DeleteFor стирает все переходы по коду
	DeleteFor(ctx context.Context, shortCode string) error
}
