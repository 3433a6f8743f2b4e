package repo

import (
	"task-tracker/backend/app/models"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) CountByUsername(username string) (int64, error) {
	var count int64
	return count, translate(r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error)
}

func (r *UserRepository) Create(u *models.User) error { return translate(r.db.Create(u).Error) }

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("id ASC").Find(&users).Error
	return users, translate(err)
}

// UsernameTakenByOther reports whether a user other than id holds username.
func (r *UserRepository) UsernameTakenByOther(username string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ? AND id <> ?", username, id).Count(&count).Error
	return count > 0, translate(err)
}

// Update overwrites the given columns of user id. The existence check runs
// first because MySQL reports zero affected rows for a no-op update.
func (r *UserRepository) Update(id uint, updates map[string]any) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Select("id").First(&u, id).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
	}))
}

// Delete removes the user together with their assignments and completion
// requests in one transaction.
func (r *UserRepository) Delete(id uint) error {
	return translate(r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.CompletionRequest{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}
