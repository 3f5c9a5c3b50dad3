package repo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trackvault/trackvault/app/models"
)

func NewChunkRecordRepo() *chunkRecordRepo {
	return &chunkRecordRepo{}
}

type chunkRecordRepo struct{}

// Upsert keyed by (session_uid, byte_offset) so a retried chunk replaces
// its earlier record.
func (r *chunkRecordRepo) Upsert(db *gorm.DB, m *models.ChunkRecord) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_uid"}, {Name: "byte_offset"}},
		DoUpdates: clause.AssignmentColumns([]string{"byte_length", "bucket", "storage_name", "part_sum", "received_at"}),
	}).Create(m).Error
	return err
}

// FindBySessionUid .
func (r *chunkRecordRepo) FindBySessionUid(db *gorm.DB, sessionUID int64) ([]models.ChunkRecord, error) {
	var ret []models.ChunkRecord
	if err := db.Where("session_uid = ?", sessionUID).Order("byte_offset asc").Find(&ret).Error; err != nil {
		return ret, err
	}
	return ret, nil
}

// DeleteBySessionUid removes the records once the part objects are swept.
func (r *chunkRecordRepo) DeleteBySessionUid(db *gorm.DB, sessionUID int64) error {
	err := db.Where("session_uid = ?", sessionUID).Delete(&models.ChunkRecord{}).Error
	return err
}
