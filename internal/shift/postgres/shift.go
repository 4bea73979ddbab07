package postgres

import (
	"time"

	internal "github.com/arifwidianto/shift-management/internal"
	"github.com/arifwidianto/shift-management/internal/shift"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShiftRepository implements the shift.Repository interface using GORM.
type ShiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) shift.Repository {
	return &ShiftRepository{db: db}
}

const dateLayout = "2006-01-02"

func (r *ShiftRepository) GetShift(userID int64, date time.Time) (*shift.Shift, error) {
	var header shift.Shift
	err := r.db.Where("user_id = ? AND shift_date = ?", userID, date.Format(dateLayout)).
		First(&header).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrShiftNotFound
		}
		return nil, err
	}
	return &header, nil
}

// UpsertShift writes the header, relying on the (user_id, shift_date) unique
// index to collapse concurrent creates into one row.
func (r *ShiftRepository) UpsertShift(s *shift.Shift) error {
	s.UpdatedAt = time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = s.UpdatedAt
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "shift_date"}},
		UpdateAll: true,
	}).Create(s).Error
}

func (r *ShiftRepository) DeleteShift(userID int64, date time.Time) error {
	return r.db.Where("user_id = ? AND shift_date = ?", userID, date.Format(dateLayout)).
		Delete(&shift.Shift{}).Error
}

func (r *ShiftRepository) ListShiftsByDate(date time.Time) ([]*shift.Shift, error) {
	var shifts []*shift.Shift
	err := r.db.Where("shift_date = ?", date.Format(dateLayout)).
		Order("user_id ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *ShiftRepository) ListShiftsByRange(from, to time.Time) ([]*shift.Shift, error) {
	var shifts []*shift.Shift
	err := r.db.Where("shift_date >= ? AND shift_date <= ?", from.Format(dateLayout), to.Format(dateLayout)).
		Order("user_id ASC, shift_date ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *ShiftRepository) CountLeaveShifts(userID int64, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&shift.Shift{}).
		Where("user_id = ? AND shift_type = ? AND shift_date >= ? AND shift_date <= ?",
			userID, shift.ShiftTypeLeave, from.Format(dateLayout), to.Format(dateLayout)).
		Count(&count).Error
	return count, err
}

func (r *ShiftRepository) CreateDetail(d *shift.ShiftDetail) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	return r.db.Create(d).Error
}

func (r *ShiftRepository) GetDetail(id int64) (*shift.ShiftDetail, error) {
	var detail shift.ShiftDetail
	err := r.db.Where("id = ?", id).First(&detail).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrDetailNotFound
		}
		return nil, err
	}
	return &detail, nil
}

func (r *ShiftRepository) UpdateDetail(d *shift.ShiftDetail) error {
	d.UpdatedAt = time.Now()
	return r.db.Save(d).Error
}

func (r *ShiftRepository) DeleteDetail(id int64) error {
	return r.db.Where("id = ?", id).Delete(&shift.ShiftDetail{}).Error
}

func (r *ShiftRepository) DeleteDetails(userID int64, date time.Time) error {
	return r.db.Where("user_id = ? AND shift_date = ?", userID, date.Format(dateLayout)).
		Delete(&shift.ShiftDetail{}).Error
}

func (r *ShiftRepository) ListDetails(userID int64, date time.Time) ([]*shift.ShiftDetail, error) {
	var details []*shift.ShiftDetail
	err := r.db.Where("user_id = ? AND shift_date = ?", userID, date.Format(dateLayout)).
		Order("start_time ASC").
		Find(&details).Error
	return details, err
}

// ListBreakOutings returns the user's break/outing rows intersecting the
// [from, to) window, for overlap checking. actualOnly narrows the comparison
// set per the confirmation-status rule.
func (r *ShiftRepository) ListBreakOutings(userID int64, actualOnly bool, excludeID int64, from, to time.Time) ([]*shift.ShiftDetail, error) {
	q := r.db.Where("user_id = ? AND detail_type IN ?", userID,
		[]string{shift.DetailTypeBreak, shift.DetailTypeOuting}).
		Where("start_time < ? AND end_time > ?", to, from)
	if actualOnly {
		q = q.Where("status = ?", shift.StatusActual)
	}
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var details []*shift.ShiftDetail
	err := q.Order("start_time ASC").Find(&details).Error
	return details, err
}

func (r *ShiftRepository) ListWorkDetailsByDate(date time.Time) ([]*shift.ShiftDetail, error) {
	var details []*shift.ShiftDetail
	err := r.db.Where("shift_date = ? AND detail_type = ?", date.Format(dateLayout), shift.DetailTypeWork).
		Order("user_id ASC, start_time ASC").
		Find(&details).Error
	return details, err
}

func (r *ShiftRepository) UpdateDetailStatus(ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&shift.ShiftDetail{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *ShiftRepository) Transaction(fn func(shift.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ShiftRepository{db: tx})
	})
}
