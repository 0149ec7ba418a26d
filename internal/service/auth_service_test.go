package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tablecritic/tablecritic/internal/dto"
	"github.com/tablecritic/tablecritic/internal/model"
	"github.com/tablecritic/tablecritic/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Restaurant{}, &model.Review{}))
	return NewAuthService(repository.NewUserRepository(db))
}

func TestSignUpAndLogin(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.SignUp(context.Background(), dto.SignUpForm{
		Username:        "testuser",
		Password:        "hunter2hunter2",
		PasswordConfirm: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.Equal(t, "testuser", user.Username)
	require.NotEqual(t, "hunter2hunter2", user.PasswordHash, "password is stored hashed")

	loggedIn, err := svc.Login(context.Background(), dto.LoginForm{
		Username: "testuser",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
}

func TestSignUpRejectsDuplicateUsername(t *testing.T) {
	svc := newAuthService(t)

	form := dto.SignUpForm{Username: "taken", Password: "password123", PasswordConfirm: "password123"}
	_, err := svc.SignUp(context.Background(), form)
	require.NoError(t, err)

	_, err = svc.SignUp(context.Background(), form)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.SignUp(context.Background(), dto.SignUpForm{
		Username: "testuser", Password: "password123", PasswordConfirm: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginForm{Username: "testuser", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginForm{Username: "nobody", Password: "password123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
