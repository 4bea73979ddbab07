package postgres

import (
	"time"

	internal "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/leave"
	"gorm.io/gorm"
)

// LeaveRepository implements the leave.Repository interface using GORM.
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(app *leave.Application) error {
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	return r.db.Create(app).Error
}

func (r *LeaveRepository) GetByID(id int64) (*leave.Application, error) {
	var app leave.Application
	err := r.db.Where("id = ?", id).First(&app).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *LeaveRepository) Update(app *leave.Application) error {
	app.UpdatedAt = time.Now()
	return r.db.Save(app).Error
}

func (r *LeaveRepository) ListByUser(userID int64, limit, offset int) ([]*leave.Application, error) {
	var apps []*leave.Application
	err := r.db.Where("user_id = ?", userID).
		Order("application_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error
	return apps, err
}

func (r *LeaveRepository) ListByStatus(status string, limit, offset int) ([]*leave.Application, error) {
	var apps []*leave.Application
	err := r.db.Where("status = ?", status).
		Order("created_at ASC"). // FIFO for decisions
		Limit(limit).
		Offset(offset).
		Find(&apps).Error
	return apps, err
}
