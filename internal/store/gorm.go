package store

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// PostgresStore persists records through gorm. Soft delete relies on the
// gorm.DeletedAt removal columns of the models.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("ping", err)
	}
	return wrap("ping", sqlDB.PingContext(ctx))
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresStore{db: tx})
	})
}

// first loads a single record into dest, mapping "no rows" to false.
func first(q *gorm.DB, dest any, op string) (bool, error) {
	err := q.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, wrap(op, err)
	}
	return true, nil
}

func (s *PostgresStore) FindUserByCredentials(ctx context.Context, name, password string) (*models.User, error) {
	var u models.User
	ok, err := first(s.db.WithContext(ctx).Where("name = ?", name), &u, "find user by credentials")
	if !ok || err != nil {
		return nil, err
	}
	if !passwordMatches(u.Password, password) {
		return nil, nil
	}
	return &u, nil
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	ok, err := first(s.db.WithContext(ctx).Where("id = ?", id), &u, "find user")
	if !ok || err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, name, password string) (*models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, wrap("hash password", err)
	}
	u := models.User{ID: uuid.New(), Name: name, Password: hash}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, wrap("create user", err)
	}
	return &u, nil
}

func (s *PostgresStore) FindListsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.List, error) {
	lists := make([]models.List, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at, id").
		Find(&lists).Error
	if err != nil {
		return nil, wrap("find lists", err)
	}
	return lists, nil
}

func (s *PostgresStore) FindListByID(ctx context.Context, id uuid.UUID) (*models.List, error) {
	return s.findList(s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *PostgresStore) FindListByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.List, error) {
	return s.findList(s.db.WithContext(ctx).Unscoped().Where("id = ?", id))
}

func (s *PostgresStore) FindListByName(ctx context.Context, name string, ownerID uuid.UUID) (*models.List, error) {
	return s.findList(s.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", ownerID, name).
		Order("created_at, id"))
}

func (s *PostgresStore) findList(q *gorm.DB) (*models.List, error) {
	var l models.List
	ok, err := first(q, &l, "find list")
	if !ok || err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *PostgresStore) InsertList(ctx context.Context, fields ListFields) (*models.List, error) {
	l := models.List{ID: uuid.New(), UserID: fields.OwnerID, Name: fields.Name, Date: fields.Date}
	if err := s.db.WithContext(ctx).Omit("User").Create(&l).Error; err != nil {
		return nil, wrap("insert list", err)
	}
	return &l, nil
}

func (s *PostgresStore) UpdateList(ctx context.Context, id uuid.UUID, fields ListFields) error {
	err := s.db.WithContext(ctx).Model(&models.List{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": fields.Name, "date": fields.Date}).Error
	return wrap("update list", err)
}

func (s *PostgresStore) SoftDeleteList(ctx context.Context, id uuid.UUID) error {
	return wrap("delete list", s.db.WithContext(ctx).Delete(&models.List{}, "id = ?", id).Error)
}

func (s *PostgresStore) FindItemsByList(ctx context.Context, listID uuid.UUID) ([]models.Item, error) {
	items := make([]models.Item, 0)
	err := s.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, wrap("find items", err)
	}
	return items, nil
}

func (s *PostgresStore) FindItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.findItem(s.db.WithContext(ctx).Where("id = ?", id))
}

func (s *PostgresStore) FindItemByIDUnscoped(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.findItem(s.db.WithContext(ctx).Unscoped().Where("id = ?", id))
}

func (s *PostgresStore) findItem(q *gorm.DB) (*models.Item, error) {
	var it models.Item
	ok, err := first(q, &it, "find item")
	if !ok || err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *PostgresStore) InsertItem(ctx context.Context, listID uuid.UUID, fields ItemFields) (*models.Item, error) {
	it := models.Item{ID: uuid.New(), ListID: listID, Name: fields.Name, Checked: fields.Checked}
	if err := s.db.WithContext(ctx).Omit("List").Create(&it).Error; err != nil {
		return nil, wrap("insert item", err)
	}
	return &it, nil
}

func (s *PostgresStore) UpdateItem(ctx context.Context, id uuid.UUID, fields ItemFields) error {
	err := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": fields.Name, "checked": fields.Checked}).Error
	return wrap("update item", err)
}

func (s *PostgresStore) SoftDeleteItem(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id)
	if result.Error != nil {
		return wrap("delete item", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotActive
	}
	return nil
}
