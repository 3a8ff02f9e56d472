package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrPairExists — POST по уже существующей паре (user, target).
	ErrPairExists = errors.New("pair already exists")
	// ErrPairNotFound — DELETE по отсутствующей паре. Бизнес-ошибка,
	// отличается от 404 по самому ресурсу.
	ErrPairNotFound = errors.New("pair not found")
)

// RelationRepository — одна параметризованная машина состояний
// {absent, present} для всех unique-pair связей: избранное, список покупок,
// подписки. Конкретная таблица задаётся переданной gorm-моделью.
type RelationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) *RelationRepository {
	return &RelationRepository{db: db}
}

// Add переводит пару absent→present. Дубликат (unique violation из БД)
// превращается в ErrPairExists.
func (r *RelationRepository) Add(ctx context.Context, value any) error {
	if err := r.db.WithContext(ctx).Create(value).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrPairExists
		}
		return err
	}
	return nil
}

// Remove переводит пару present→absent: удаляет ровно строки, подходящие под
// условие. Ноль затронутых строк — ErrPairNotFound.
func (r *RelationRepository) Remove(ctx context.Context, model any, query string, args ...any) error {
	tx := r.db.WithContext(ctx).Where(query, args...).Delete(model)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrPairNotFound
	}
	return nil
}

func (r *RelationRepository) Exists(ctx context.Context, model any, query string, args ...any) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error
	return count > 0, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// sqlite (локальная разработка и e2e) отдаёт текстовую ошибку
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		errors.Is(err, gorm.ErrDuplicatedKey)
}
