package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"mall-backend/database"
	"mall-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

type published struct {
	topic   string
	key     string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{topic, key, payload})
	return r.err
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.topic)
	}
	return out
}

func newTestStore(t *testing.T) (*Store, *recordingPublisher) {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	pub := &recordingPublisher{}
	return New(db, pub), pub
}

func seedUser(t *testing.T, s *Store, username string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed",
		Role:     models.RoleCustomer,
	}
	require.NoError(t, s.DB.Create(&user).Error)
	return user
}

func seedCategory(t *testing.T, s *Store, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name}
	require.NoError(t, s.CreateCategory(context.Background(), &category))
	return category
}

func seedProduct(t *testing.T, s *Store, name, price string, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
	require.NoError(t, s.CreateProduct(context.Background(), &product))
	return product
}

func TestNewDefaultsToNopPublisher(t *testing.T) {
	s := New(nil, nil)
	require.NotNil(t, s.Events)
	require.NoError(t, s.Events.Publish(context.Background(), "t", "k", nil))
}

func TestIdentityValidate(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name     string
		identity Identity
		wantErr  bool
	}{
		{"user", UserIdentity(id), false},
		{"session", SessionIdentity("abc"), false},
		{"both", Identity{UserID: &id, SessionKey: "abc"}, false},
		{"neither", Identity{}, true},
		{"session too long", SessionIdentity(fmt.Sprintf("%041d", 0)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.identity.validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIdentityRequired)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
