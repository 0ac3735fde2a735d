package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"logipro/internal/authz"
	"logipro/internal/domain/user"
)

type UserRepository struct {
	v view
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	return r.v.do(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return user.ErrUserAlreadyExists
			}
			if u.ExternalUID != nil && existing.ExternalUID != nil && *existing.ExternalUID == *u.ExternalUID {
				return user.ErrUserAlreadyExists
			}
		}
		now := time.Now()
		u.ID = uuid.New()
		u.CreatedAt = now
		u.UpdatedAt = now
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByID(_ context.Context, userID uuid.UUID) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ID == userID })
}

func (r *UserRepository) GetByExternalUID(_ context.Context, uid string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ExternalUID != nil && *u.ExternalUID == uid })
}

func (r *UserRepository) find(match func(*user.User) bool) (*user.User, error) {
	var found *user.User
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if match(&u) {
				found = &u
				return nil
			}
		}
		return user.ErrUserNotFound
	})
	return found, err
}

func (r *UserRepository) List(_ context.Context, filter *user.Filter) ([]*user.User, int64, error) {
	var matched []*user.User
	err := r.v.do(func(st *state) error {
		search := strings.ToLower(filter.Search)
		for _, u := range st.users {
			if filter.Role != nil && u.Role != *filter.Role {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(u.Email), search) &&
				!strings.Contains(strings.ToLower(u.FullName), search) {
				continue
			}
			matched = append(matched, &u)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortNewestFirst(matched, func(u *user.User) time.Time { return u.CreatedAt })
	return paginate(matched, filter.Page, filter.PageSize), int64(len(matched)), nil
}

func (r *UserRepository) Update(_ context.Context, u *user.User) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.users[u.ID]
		if !ok {
			return user.ErrUserNotFound
		}
		u.UpdatedAt = time.Now()
		existing.FullName = u.FullName
		existing.PhoneNumber = u.PhoneNumber
		existing.IsActive = u.IsActive
		existing.UpdatedAt = u.UpdatedAt
		st.users[u.ID] = existing
		return nil
	})
}

func (r *UserRepository) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	return r.v.do(func(st *state) error {
		existing, ok := st.users[userID]
		if !ok {
			return user.ErrUserNotFound
		}
		existing.PasswordHashed = passwordHash
		existing.UpdatedAt = time.Now()
		st.users[userID] = existing
		return nil
	})
}

func (r *UserRepository) TouchLastLogin(_ context.Context, userID uuid.UUID, at time.Time) error {
	return r.v.do(func(st *state) error {
		if existing, ok := st.users[userID]; ok {
			existing.LastLoginAt = &at
			st.users[userID] = existing
		}
		return nil
	})
}

func (r *UserRepository) CountByRole(_ context.Context, role authz.Role) (int64, error) {
	var count int64
	err := r.v.do(func(st *state) error {
		for _, u := range st.users {
			if u.Role == role {
				count++
			}
		}
		return nil
	})
	return count, err
}

type RefreshTokenRepository struct {
	v view
}

func (r *RefreshTokenRepository) Create(_ context.Context, token *user.RefreshToken) error {
	return r.v.do(func(st *state) error {
		now := time.Now()
		token.ID = uuid.New()
		token.CreatedAt = now
		token.UpdatedAt = now
		st.tokens[token.ID] = *token
		return nil
	})
}

func (r *RefreshTokenRepository) GetByToken(_ context.Context, token string) (*user.RefreshToken, error) {
	var found *user.RefreshToken
	err := r.v.do(func(st *state) error {
		for _, t := range st.tokens {
			if t.Token == token && t.IsActive() {
				found = &t
				return nil
			}
		}
		return user.ErrTokenInvalid
	})
	return found, err
}

func (r *RefreshTokenRepository) Revoke(_ context.Context, tokenID uuid.UUID) error {
	return r.v.do(func(st *state) error {
		t, ok := st.tokens[tokenID]
		if !ok || t.Revoked {
			return user.ErrTokenInvalid
		}
		revoke(&t)
		st.tokens[tokenID] = t
		return nil
	})
}

func (r *RefreshTokenRepository) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	return r.v.do(func(st *state) error {
		for id, t := range st.tokens {
			if t.UserID == userID && !t.Revoked {
				revoke(&t)
				st.tokens[id] = t
			}
		}
		return nil
	})
}

func (r *RefreshTokenRepository) DeleteExpired(_ context.Context, olderThan time.Duration) (int64, error) {
	var deleted int64
	cutoff := time.Now().Add(-olderThan)
	err := r.v.do(func(st *state) error {
		for id, t := range st.tokens {
			if t.ExpiresAt.Before(cutoff) || (t.Revoked && t.RevokedAt != nil && t.RevokedAt.Before(cutoff)) {
				delete(st.tokens, id)
				deleted++
			}
		}
		return nil
	})
	return deleted, err
}

func revoke(t *user.RefreshToken) {
	now := time.Now()
	t.Revoked = true
	t.RevokedAt = &now
	t.UpdatedAt = now
}
