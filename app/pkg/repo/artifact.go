package repo

import (
	"gorm.io/gorm"

	"github.com/trackvault/trackvault/app/models"
)

func NewArtifactRepo() *artifactRepo {
	return &artifactRepo{}
}

type artifactRepo struct{}

// Create .
func (r *artifactRepo) Create(db *gorm.DB, m *models.Artifact) error {
	err := db.Create(m).Error
	return err
}

// GetByUid .
func (r *artifactRepo) GetByUid(db *gorm.DB, uid int64) (*models.Artifact, error) {
	ret := &models.Artifact{}
	if err := db.Where("uid = ?", uid).First(ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}

// GetBySessionUid .
func (r *artifactRepo) GetBySessionUid(db *gorm.DB, sessionUID int64) (*models.Artifact, error) {
	ret := &models.Artifact{}
	if err := db.Where("session_uid = ?", sessionUID).First(ret).Error; err != nil {
		return nil, err
	}
	return ret, nil
}
