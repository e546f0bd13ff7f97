// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User and
// Follow models.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edqorta/edqorta-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-constraint violation, e.g. inserting a
// follow edge or like row that already exists.
var ErrDuplicate = errors.New("duplicate")

// isUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// CreateUser inserts a new User row. The caller supplies the username and
// display name; the ID is a randomly generated UUID and timestamps are UTC.
func CreateUser(ctx context.Context, db *gorm.DB, name, username string) (*domain.User, error) {
	u := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by ID, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername fetches a user by unique handle, or ErrNotFound.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserProfile applies a partial column update to the user row and
// returns the refreshed record. Only the columns present in fields are
// touched; absent columns keep their stored values. Returns ErrNotFound
// if the user does not exist.
func UpdateUserProfile(ctx context.Context, db *gorm.DB, id string, fields map[string]any) (*domain.User, error) {
	if len(fields) > 0 {
		res := db.WithContext(ctx).
			Model(&domain.User{}).
			Where("id = ?", id).
			Updates(fields)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return GetUser(ctx, db, id)
}

// CreateFollow inserts a follower->followee edge and bumps both denormalized
// counters in one transaction. Returns ErrDuplicate if the edge already
// exists and ErrNotFound if either user is missing.
func CreateFollow(ctx context.Context, db *gorm.DB, followerID, followeeID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f := &domain.Follow{
			ID:         uuid.NewString(),
			FollowerID: followerID,
			FolloweeID: followeeID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := tx.Create(f).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
		if err := adjustCount(tx, followeeID, "followers_count", +1); err != nil {
			return err
		}
		return adjustCount(tx, followerID, "following_count", +1)
	})
}

// DeleteFollow removes the follower->followee edge and decrements both
// counters, clamping at zero. Returns ErrNotFound if no edge existed.
func DeleteFollow(ctx context.Context, db *gorm.DB, followerID, followeeID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Delete(&domain.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := adjustCount(tx, followeeID, "followers_count", -1); err != nil {
			return err
		}
		return adjustCount(tx, followerID, "following_count", -1)
	})
}

// IsFollowing reports whether followerID currently follows followeeID.
func IsFollowing(ctx context.Context, db *gorm.DB, followerID, followeeID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error
	return n > 0, err
}

// adjustCount shifts a denormalized counter column by delta, clamping at
// zero on decrement so concurrent corrections never drive it negative.
func adjustCount(tx *gorm.DB, userID, column string, delta int) error {
	expr := gorm.Expr(column+" + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("MAX("+column+" + ?, 0)", delta)
	}
	res := tx.Model(&domain.User{}).
		Where("id = ?", userID).
		UpdateColumn(column, expr)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListFollowers returns the users following userID, most recent edge first.
func ListFollowers(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "follows", Name: "created_at"}, Desc: true}).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
