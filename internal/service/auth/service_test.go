package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalms/hospital-api/internal/model"
	"github.com/hospitalms/hospital-api/pkg/auth"
	apperrors "github.com/hospitalms/hospital-api/pkg/errors"
)

type fakeUsers struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUsers) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) List(_ context.Context) ([]*model.User, error) {
	out := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

func newService(users ...*model.User) (*Service, *fakeUsers) {
	repo := &fakeUsers{users: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
	})
	return NewService(repo, jwtSvc, fakeHasher{}), repo
}

func activeUser(username, role string) *model.User {
	return &model.User{
		Base:         model.Base{ID: uuid.New()},
		Username:     username,
		PasswordHash: "hashed:password123",
		Role:         role,
		Active:       true,
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, _ := newService(activeUser("dr_grey", model.RoleDoctor))

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "dr_grey",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Access)
	assert.NotEmpty(t, tokens.Refresh)

	claims, err := svc.Verify(context.Background(), tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, "dr_grey", claims.Username)
	assert.Equal(t, model.RoleDoctor, claims.Role)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	svc, _ := newService(activeUser("dr_grey", model.RoleDoctor))

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "dr_grey",
		Password: "wrong",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestLoginUnknownUserUnauthorized(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "nobody",
		Password: "password123",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestLoginDeactivatedAccountRejected(t *testing.T) {
	deactivated := activeUser("dr_grey", model.RoleDoctor)
	deactivated.Active = false
	svc, _ := newService(deactivated)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "dr_grey",
		Password: "password123",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestLoginSuperuserBypassesActiveCheck(t *testing.T) {
	root := activeUser("root", model.RoleAdmin)
	root.Active = false
	root.IsSuperuser = true
	svc, _ := newService(root)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "root",
		Password: "password123",
	})
	require.NoError(t, err)

	claims, err := svc.Verify(context.Background(), tokens.Access)
	require.NoError(t, err)
	assert.True(t, claims.IsSuperuser)
}

func TestRefreshRotatesTokens(t *testing.T) {
	user := activeUser("dr_grey", model.RoleDoctor)
	svc, repo := newService(user)

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "dr_grey",
		Password: "password123",
	})
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), tokens.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.Access)

	// A deleted user cannot refresh.
	delete(repo.users, user.ID)
	_, err = svc.Refresh(context.Background(), tokens.Refresh)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newService(activeUser("dr_grey", model.RoleDoctor))

	tokens, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "dr_grey",
		Password: "password123",
	})
	require.NoError(t, err)

	// Access and refresh tokens are signed with different secrets.
	_, err = svc.Refresh(context.Background(), tokens.Access)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}
