package repo

import (
	"time"

	"gorm.io/gorm"

	"github.com/trackvault/trackvault/app/models"
)

func NewUploadSessionRepo() *uploadSessionRepo {
	return &uploadSessionRepo{}
}

type uploadSessionRepo struct{}

// Create .
func (r *uploadSessionRepo) Create(db *gorm.DB, m *models.UploadSession) error {
	err := db.Create(m).Error
	return err
}

// GetByUid .
func (r *uploadSessionRepo) GetByUid(db *gorm.DB, uid int64) (*models.UploadSession, error) {
	ret := &models.UploadSession{}
	if err := db.Where("uid = ?", uid).First(ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}

// CASState conditional state transition, zero rows affected means the
// caller lost the race.
func (r *uploadSessionRepo) CASState(db *gorm.DB, uid int64, from, to string) int64 {
	affected := db.Model(&models.UploadSession{}).Where("uid = ? and state = ?", uid, from).
		UpdateColumn("state", to)
	return affected.RowsAffected
}

// MarkFailed conditional transition into failed with the stable code.
func (r *uploadSessionRepo) MarkFailed(db *gorm.DB, uid int64, from, failCode string) int64 {
	affected := db.Model(&models.UploadSession{}).Where("uid = ? and state = ?", uid, from).
		UpdateColumns(map[string]interface{}{
			"state":     models.SessionFailed,
			"fail_code": failCode,
		})
	return affected.RowsAffected
}

// Touch .
func (r *uploadSessionRepo) Touch(db *gorm.DB, uid int64, at time.Time) error {
	err := db.Model(&models.UploadSession{}).Where("uid = ?", uid).
		UpdateColumn("last_activity", at).Error
	return err
}

// FindIdleBefore non-terminal sessions whose last activity predates the cutoff.
func (r *uploadSessionRepo) FindIdleBefore(db *gorm.DB, cutoff time.Time) ([]models.UploadSession, error) {
	var ret []models.UploadSession
	terminal := []string{models.SessionReady, models.SessionFailed, models.SessionExpired}
	if err := db.Where("last_activity < ? and state not in ?", cutoff, terminal).Find(&ret).Error; err != nil {
		return ret, err
	}
	return ret, nil
}
