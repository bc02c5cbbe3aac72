package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-user-registration/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// UserStore keeps registered email addresses in a single Redis list,
// so insertion order is the list order.
type UserStore struct {
	rdb goredis.Cmdable
	key string
}

func NewUserStore(rdb goredis.Cmdable, key string) *UserStore {
	return &UserStore{rdb: rdb, key: key}
}

func (s *UserStore) AddUser(ctx context.Context, email string) error {
	if err := s.rdb.RPush(ctx, s.key, email).Err(); err != nil {
		return fmt.Errorf("add user %s: %w", email, err)
	}
	return nil
}

func (s *UserStore) HasUser(ctx context.Context, email string) (bool, error) {
	_, err := s.rdb.LPos(ctx, s.key, email, goredis.LPosArgs{}).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup user %s: %w", email, err)
	}
	return true, nil
}

// DeleteUser removes the first occurrence of email.
func (s *UserStore) DeleteUser(ctx context.Context, email string) error {
	removed, err := s.rdb.LRem(ctx, s.key, 1, email).Result()
	if err != nil {
		return fmt.Errorf("delete user %s: %w", email, err)
	}
	if removed == 0 {
		return fmt.Errorf("delete %s: %w", email, domain.ErrUserNotFound)
	}
	return nil
}

func (s *UserStore) Users(ctx context.Context) ([]string, error) {
	users, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) NumberOfUsers(ctx context.Context) (int, error) {
	n, err := s.rdb.LLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

func (s *UserStore) IsReadWriteSupported() bool { return true }

func (s *UserStore) DatabaseName() string { return "redis" }

func (s *UserStore) DropDatabase(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("drop users: %w", err)
	}
	return nil
}
