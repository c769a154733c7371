package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shop_api/internal/models"
)

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

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	return New(InitTestDB(t), 5*time.Second)
}

func newMockRepo(t *testing.T, timeout time.Duration) (*GormRepo, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	return New(db, timeout), mock
}

func seedProduct(t *testing.T, r *GormRepo, name string, cost int64, icon []byte) models.Product {
	t.Helper()
	p := models.Product{Name: name, Cost: cost, Icon: icon}
	require.NoError(t, r.CreateProduct(context.Background(), &p))
	return p
}

func seedUser(t *testing.T, r *GormRepo, username string, role models.Role) models.User {
	t.Helper()
	u := models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, r.CreateUser(context.Background(), &u))
	return u
}
