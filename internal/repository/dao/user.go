package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrAdminExists       = errors.New("admin already exists")
	ErrAdminNotFound     = errors.New("admin not found")
	ErrParentEmailExists = errors.New("parent already exists")
	ErrParentNotFound    = errors.New("parent not found")
)

type Admin struct {
	ID uint `gorm:"primaryKey"`

	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
	Role     string `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
}

type Parent struct {
	ID uint `gorm:"primaryKey"`

	Name    string
	Email   string  `gorm:"unique;not null"`
	PupilID *string `gorm:"index"`

	Password            string `gorm:"not null"`
	ForcePasswordChange bool   `gorm:"not null"`
	PasswordChangedAt   *time.Time
	TokenVersion        int `gorm:"not null"`

	IsHidden bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type AdminDAO struct {
	db *gorm.DB
}

func NewAdminDAO(db *gorm.DB) *AdminDAO {
	return &AdminDAO{
		db: db,
	}
}

func (d *AdminDAO) Insert(ctx context.Context, admin Admin) (Admin, error) {
	result := conn(ctx, d.db).Create(&admin)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Admin{}, ErrAdminExists
		}

		return Admin{}, result.Error
	}

	return admin, nil
}

func (d *AdminDAO) FindByUsername(ctx context.Context, username string) (Admin, error) {
	var admin Admin

	result := conn(ctx, d.db).First(&admin, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Admin{}, ErrAdminNotFound
		}

		return Admin{}, result.Error
	}

	return admin, nil
}

func (d *AdminDAO) FindByID(ctx context.Context, id uint) (Admin, error) {
	var admin Admin

	result := conn(ctx, d.db).First(&admin, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Admin{}, ErrAdminNotFound
		}

		return Admin{}, result.Error
	}

	return admin, nil
}

type ParentDAO struct {
	db *gorm.DB
}

func NewParentDAO(db *gorm.DB) *ParentDAO {
	return &ParentDAO{
		db: db,
	}
}

func (d *ParentDAO) Insert(ctx context.Context, parent Parent) (Parent, error) {
	result := conn(ctx, d.db).Create(&parent)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Parent{}, ErrParentEmailExists
		}

		return Parent{}, result.Error
	}

	return parent, nil
}

func (d *ParentDAO) FindByID(ctx context.Context, id uint) (Parent, error) {
	return d.first(ctx, "id = ?", id)
}

func (d *ParentDAO) FindByEmail(ctx context.Context, email string) (Parent, error) {
	return d.first(ctx, "email = ?", email)
}

func (d *ParentDAO) FindByPupilID(ctx context.Context, pupilID string) (Parent, error) {
	return d.first(ctx, "pupil_id = ?", pupilID)
}

func (d *ParentDAO) first(ctx context.Context, query string, args ...interface{}) (Parent, error) {
	var parent Parent

	result := conn(ctx, d.db).Where(query, args...).First(&parent)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Parent{}, ErrParentNotFound
		}

		return Parent{}, result.Error
	}

	return parent, nil
}

// List returns parents in insertion order.
func (d *ParentDAO) List(ctx context.Context, includeHidden bool) ([]Parent, error) {
	var parents []Parent

	query := conn(ctx, d.db).Order("id asc")
	if !includeHidden {
		query = query.Where("is_hidden = ?", false)
	}

	if err := query.Find(&parents).Error; err != nil {
		return nil, err
	}

	return parents, nil
}

// FindByIDs returns the parents with the given ids, keyed by id.
func (d *ParentDAO) FindByIDs(ctx context.Context, ids []uint) (map[uint]Parent, error) {
	found := make(map[uint]Parent, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var parents []Parent
	if err := conn(ctx, d.db).Where("id IN ?", ids).Find(&parents).Error; err != nil {
		return nil, err
	}

	for _, p := range parents {
		found[p.ID] = p
	}

	return found, nil
}

func (d *ParentDAO) UpdateProfile(ctx context.Context, id uint, name, email string) (Parent, error) {
	result := conn(ctx, d.db).Model(&Parent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":  name,
		"email": email,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Parent{}, ErrParentEmailExists
		}

		return Parent{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Parent{}, ErrParentNotFound
	}

	return d.FindByID(ctx, id)
}

func (d *ParentDAO) SetHidden(ctx context.Context, id uint, hidden bool) (Parent, error) {
	result := conn(ctx, d.db).Model(&Parent{}).Where("id = ?", id).Update("is_hidden", hidden)
	if result.Error != nil {
		return Parent{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Parent{}, ErrParentNotFound
	}

	return d.FindByID(ctx, id)
}

// UpdatePassword replaces the password hash, sets the forced change flag and
// bumps the token version so tokens issued earlier stop resolving.
func (d *ParentDAO) UpdatePassword(ctx context.Context, id uint, hash string, force bool, changedAt *time.Time) (Parent, error) {
	result := conn(ctx, d.db).Model(&Parent{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password":              hash,
		"force_password_change": force,
		"password_changed_at":   changedAt,
		"token_version":         gorm.Expr("token_version + ?", 1),
	})
	if result.Error != nil {
		return Parent{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Parent{}, ErrParentNotFound
	}

	return d.FindByID(ctx, id)
}

// Delete removes the parent and every contribution it owns.
func (d *ParentDAO) Delete(ctx context.Context, id uint) error {
	db := conn(ctx, d.db)

	if err := db.Where("parent_id = ?", id).Delete(&Contribution{}).Error; err != nil {
		return err
	}

	result := db.Delete(&Parent{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParentNotFound
	}

	return nil
}
