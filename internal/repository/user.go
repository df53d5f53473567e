package repository

import (
	"context"
	"fmt"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByStudentID(ctx context.Context, studentID string) (model.User, error)
	Create(ctx context.Context, user model.User) (model.User, error)
	Save(ctx context.Context, user model.User) (model.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	// LockByID takes a row lock on the user for the rest of the enclosing
	// transaction. sqlite serializes writers itself, so it is a no-op there.
	LockByID(ctx context.Context, id string) error
}

type user struct {
	db *gorm.DB
}

func newUserRepository(db *gorm.DB) UserRepository {
	return &user{
		db: db,
	}
}

func (u *user) GetByID(ctx context.Context, id string) (model.User, error) {
	var user model.User
	result := u.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		return model.User{}, wrapError(result.Error)
	}

	return user, nil
}

func (u *user) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	result := u.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		return model.User{}, wrapError(result.Error)
	}

	return user, nil
}

func (u *user) GetByStudentID(ctx context.Context, studentID string) (model.User, error) {
	var user model.User
	result := u.db.WithContext(ctx).First(&user, "student_id = ?", studentID)
	if result.Error != nil {
		return model.User{}, wrapError(result.Error)
	}

	return user, nil
}

func (u *user) Create(ctx context.Context, user model.User) (model.User, error) {
	result := u.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		return model.User{}, wrapError(result.Error)
	}

	return user, nil
}

func (u *user) Save(ctx context.Context, user model.User) (model.User, error) {
	result := u.db.WithContext(ctx).Save(&user)
	if result.Error != nil {
		return model.User{}, wrapError(result.Error)
	}

	return user, nil
}

func (u *user) Delete(ctx context.Context, id string) error {
	result := u.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id)
	if result.Error != nil {
		return wrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %s", dto.ErrNotFound, id)
	}

	return nil
}

func (u *user) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	result := u.db.WithContext(ctx).Order("created_at desc").Find(&users)
	if result.Error != nil {
		return nil, wrapError(result.Error)
	}

	return users, nil
}

func (u *user) Count(ctx context.Context) (int64, error) {
	var count int64
	result := u.db.WithContext(ctx).Model(&model.User{}).Count(&count)
	if result.Error != nil {
		return 0, wrapError(result.Error)
	}

	return count, nil
}

func (u *user) LockByID(ctx context.Context, id string) error {
	if u.db.Dialector.Name() != "postgres" {
		return nil
	}

	var locked model.User
	result := u.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "id = ?", id)
	if result.Error != nil {
		return wrapError(result.Error)
	}

	return nil
}
