package repo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trackvault/trackvault/app/models"
)

func NewTrackMetaRepo() *trackMetaRepo {
	return &trackMetaRepo{}
}

type trackMetaRepo struct{}

// Upsert keyed by artifact uid. The metadata, waveform and preview jobs
// each fill their own columns, so partial rows are normal.
func (r *trackMetaRepo) Upsert(db *gorm.DB, m *models.TrackMeta, columns []string) error {
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "artifact_uid"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(m).Error
	return err
}

// GetByArtifactUid .
func (r *trackMetaRepo) GetByArtifactUid(db *gorm.DB, artifactUID int64) (*models.TrackMeta, error) {
	ret := &models.TrackMeta{}
	if err := db.Where("artifact_uid = ?", artifactUID).First(ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}
