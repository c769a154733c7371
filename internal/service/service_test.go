package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shop_api/internal/events"
	"github.com/Skotchmaster/shop_api/internal/hash"
	"github.com/Skotchmaster/shop_api/internal/metrics"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/tokens"
)

type published struct {
	Topic string
	Key   string
	Event events.Event
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{Topic: topic, Key: key, Event: ev})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.sent))
	for _, s := range p.sent {
		out = append(out, s.Event.Type)
	}
	return out
}

type testEnv struct {
	DB      *gorm.DB
	Repo    *repo.GormRepo
	Tokens  *tokens.Service
	Pub     *recordingPublisher
	Auth    *AuthService
	Cart    *CartService
	Catalog *CatalogService
	Profile *ProfileService
}

var fastHash = func(pw string) (string, error) {
	return hash.HashPasswordWith(pw, hash.Params{Memory: 8 * 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32})
}

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartLine{}))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := InitTestDB(t)
	r := repo.New(db, 5*time.Second)
	ts, err := tokens.NewService([]byte("svc-secret"), "HS256", time.Hour)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	n := Notifier{Events: pub, Metrics: metrics.New()}

	auth := NewAuthService(r, ts, n, true)
	auth.HashPassword = fastHash

	return &testEnv{
		DB:      db,
		Repo:    r,
		Tokens:  ts,
		Pub:     pub,
		Auth:    auth,
		Cart:    NewCartService(r, n),
		Catalog: NewCatalogService(r, n),
		Profile: NewProfileService(r),
	}
}

func (env *testEnv) register(t *testing.T, username string, role models.Role) {
	t.Helper()
	_, err := env.Auth.Register(context.Background(), username, "pw-"+username, role)
	require.NoError(t, err)
}

func TestNotifier_PublishFailureIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	n := Notifier{Events: pub, Metrics: metrics.New()}

	require.NotPanics(t, func() {
		n.publish(context.Background(), events.TopicCart, "k", events.New("x", nil))
	})

	var nilPub Notifier
	require.NotPanics(t, func() {
		nilPub.publish(context.Background(), events.TopicCart, "k", events.New("x", nil))
	})
}
