package repo

import (
	"gorm.io/gorm"

	"github.com/trackvault/trackvault/app/models"
)

// JobLogRepo .
var JobLogRepo = newJobLogRepo()

func newJobLogRepo() *jobLogRepo {
	return &jobLogRepo{}
}

type jobLogRepo struct{}

func (r *jobLogRepo) Create(db *gorm.DB, m *models.JobLog) error {
	err := db.Create(m).Error
	return err
}

func (r *jobLogRepo) UpdateColumn(db *gorm.DB, logID int64, columns map[string]interface{}) error {
	err := db.Model(&models.JobLog{}).Where("id = ?", logID).Updates(columns).Error
	return err
}

func (r *jobLogRepo) GetByJobID(db *gorm.DB, jobID int64) (*models.JobLog, error) {
	ret := &models.JobLog{}
	if err := db.Where("job_id = ?", jobID).First(ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}
