package postgres

import (
	"time"

	internal "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/directory"
	"gorm.io/gorm"
)

// DirectoryRepository implements directory.Repository using GORM.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) directory.Repository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) GetUser(id int64) (*directory.User, error) {
	var user directory.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *DirectoryRepository) ListActiveUsers() ([]*directory.User, error) {
	var users []*directory.User
	err := r.db.Where("status = ?", directory.UserStatusActive).
		Order("position ASC, id ASC").
		Find(&users).Error
	return users, err
}

func (r *DirectoryRepository) IsHoliday(date time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&directory.Holiday{}).
		Where("holiday_date = ?", date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

func (r *DirectoryRepository) FindTemplates(weekday int, dayType, shiftType string) ([]*directory.DefaultShift, error) {
	var templates []*directory.DefaultShift
	err := r.db.Where("weekday = ? AND day_type = ? AND shift_type = ?", weekday, dayType, shiftType).
		Order("start_time ASC").
		Find(&templates).Error
	return templates, err
}

func (r *DirectoryRepository) GetSetting(userID int64) (*directory.UserShiftSetting, error) {
	var setting directory.UserShiftSetting
	err := r.db.Where("user_id = ?", userID).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// absent settings row means no limit configured
			return &directory.UserShiftSetting{UserID: userID, MonthlyLeaveLimit: 0}, nil
		}
		return nil, err
	}
	return &setting, nil
}
