package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bigtal/bigtal/internal/shared"
)

type memoryRepo struct {
	users  map[string]User
	hashes map[string]string
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User), hashes: make(map[string]string)}
}

func (r *memoryRepo) ListUsers(ctx context.Context) ([]User, error) {
	result := []User{}
	for _, u := range r.users {
		result = append(result, u)
	}
	return result, nil
}

func (r *memoryRepo) GetUser(ctx context.Context, id int64) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) CreateUser(ctx context.Context, username, passwordHash string, role Role) (*User, error) {
	if _, ok := r.users[username]; ok {
		return nil, shared.ErrDuplicate
	}
	r.nextID++
	user := User{ID: r.nextID, Username: username, Role: role}
	r.users[username] = user
	r.hashes[username] = passwordHash
	return &user, nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	user, err := svc.CreateUser(context.Background(), CreateInput{Username: "dina", Password: "correct horse", Role: RoleAttendant})
	require.NoError(t, err)
	require.Equal(t, RoleAttendant, user.Role)

	hash := repo.hashes["dina"]
	require.NotEqual(t, "correct horse", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))
}

func TestCreateUserValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateInput{Password: "long enough", Role: RoleAdmin})
	require.Error(t, err)

	_, err = svc.CreateUser(ctx, CreateInput{Username: "bob", Password: "short", Role: RoleAdmin})
	require.Error(t, err)

	_, err = svc.CreateUser(ctx, CreateInput{Username: "bob", Password: "long enough", Role: Role("owner")})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateInput{Username: "dina", Password: "correct horse", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, CreateInput{Username: "dina", Password: "correct horse", Role: RoleAdmin})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}
