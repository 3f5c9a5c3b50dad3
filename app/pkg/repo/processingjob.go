package repo

import (
	"time"

	"gorm.io/gorm"

	"github.com/trackvault/trackvault/app/models"
)

func NewProcessingJobRepo() *processingJobRepo {
	return &processingJobRepo{}
}

type processingJobRepo struct{}

// Create .
func (r *processingJobRepo) Create(db *gorm.DB, m *models.ProcessingJob) error {
	err := db.Create(m).Error
	return err
}

// GetByID .
func (r *processingJobRepo) GetByID(db *gorm.DB, jobID int64) (*models.ProcessingJob, error) {
	ret := &models.ProcessingJob{}
	if err := db.Where("id = ?", jobID).First(ret).Error; err != nil {
		return ret, err
	}
	return ret, nil
}

// FindDueQueued queued jobs whose backoff window has elapsed.
func (r *processingJobRepo) FindDueQueued(db *gorm.DB, now time.Time) ([]models.ProcessingJob, error) {
	var ret []models.ProcessingJob
	if err := db.Where("status = ? and (next_attempt_at is null or next_attempt_at <= ?)",
		models.JobStatusQueued, now).Find(&ret).Error; err != nil {
		return ret, err
	}
	return ret, nil
}

// FindBySessionUid .
func (r *processingJobRepo) FindBySessionUid(db *gorm.DB, sessionUID int64) ([]models.ProcessingJob, error) {
	var ret []models.ProcessingJob
	if err := db.Where("session_uid = ?", sessionUID).Find(&ret).Error; err != nil {
		return ret, err
	}
	return ret, nil
}

// PreemptiveJobByID claims a queued job for this node. Zero rows affected
// means another node already runs it.
func (r *processingJobRepo) PreemptiveJobByID(db *gorm.DB, jobID int64, nodeId string) int64 {
	affected := db.Model(&models.ProcessingJob{}).Where("id = ? and status = ?", jobID, models.JobStatusQueued).
		UpdateColumns(map[string]interface{}{
			"status":       models.JobStatusRunning,
			"node_id":      nodeId,
			"execute_time": gorm.Expr("execute_time + 1"),
		})
	return affected.RowsAffected
}

// FinishJobByID .
func (r *processingJobRepo) FinishJobByID(db *gorm.DB, jobID int64) int64 {
	affected := db.Model(&models.ProcessingJob{}).Where("id = ? and status = ?", jobID, models.JobStatusRunning).
		UpdateColumn("status", models.JobStatusSucceeded)
	return affected.RowsAffected
}

// ErrorJobByID marks the job permanently failed and records the last error.
func (r *processingJobRepo) ErrorJobByID(db *gorm.DB, jobID int64, errorInfo string) int64 {
	affected := db.Model(&models.ProcessingJob{}).Where("id = ? and status = ?", jobID, models.JobStatusRunning).
		UpdateColumns(map[string]interface{}{
			"status":     models.JobStatusFailed,
			"error_info": errorInfo,
		})
	return affected.RowsAffected
}

// RequeueJobByID puts a failed attempt back in the queue gated behind the
// backoff timestamp.
func (r *processingJobRepo) RequeueJobByID(db *gorm.DB, jobID int64, nextAttempt time.Time, errorInfo string) int64 {
	affected := db.Model(&models.ProcessingJob{}).Where("id = ? and status = ?", jobID, models.JobStatusRunning).
		UpdateColumns(map[string]interface{}{
			"status":          models.JobStatusQueued,
			"node_id":         "",
			"next_attempt_at": nextAttempt,
			"error_info":      errorInfo,
		})
	return affected.RowsAffected
}

// ResetJobsByNode releases running jobs held by a node that is shutting
// down so another node can pick them up.
func (r *processingJobRepo) ResetJobsByNode(db *gorm.DB, nodeId string) int64 {
	affected := db.Model(&models.ProcessingJob{}).Where("node_id = ? and status = ?", nodeId, models.JobStatusRunning).
		UpdateColumns(map[string]interface{}{
			"status":  models.JobStatusQueued,
			"node_id": "",
		})
	return affected.RowsAffected
}

// UpdateColumn .
func (r *processingJobRepo) UpdateColumn(db *gorm.DB, jobID int64, name string, value interface{}) error {
	err := db.Model(&models.ProcessingJob{}).Where("id = ?", jobID).UpdateColumn(name, value).Error
	return err
}
