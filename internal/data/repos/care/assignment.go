package care

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

type DoctorAssignmentRepo interface {
	Create(dbc dbctx.Context, row *types.DoctorAssignment) error
	// ListActiveByPatient returns active assignments, most recently assigned first.
	ListActiveByPatient(dbc dbctx.Context, patientID uuid.UUID) ([]*types.DoctorAssignment, error)
	ListActivePatientIDs(dbc dbctx.Context, doctorID uuid.UUID) ([]uuid.UUID, error)
	IsActivePair(dbc dbctx.Context, doctorID, patientID uuid.UUID) (bool, error)
}

type doctorAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDoctorAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) DoctorAssignmentRepo {
	return &doctorAssignmentRepo{db: db, log: baseLog.With("repo", "DoctorAssignmentRepo")}
}

func (r *doctorAssignmentRepo) Create(dbc dbctx.Context, row *types.DoctorAssignment) error {
	db := dbc.DB(r.db)
	if row == nil {
		return nil
	}
	return db.Create(row).Error
}

func (r *doctorAssignmentRepo) ListActiveByPatient(dbc dbctx.Context, patientID uuid.UUID) ([]*types.DoctorAssignment, error) {
	db := dbc.DB(r.db)
	var out []*types.DoctorAssignment
	if patientID == uuid.Nil {
		return out, nil
	}
	if err := db.
		Where("patient_id = ? AND is_active = ?", patientID, true).
		Order("assigned_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *doctorAssignmentRepo) ListActivePatientIDs(dbc dbctx.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	db := dbc.DB(r.db)
	var ids []uuid.UUID
	if doctorID == uuid.Nil {
		return ids, nil
	}
	if err := db.
		Model(&types.DoctorAssignment{}).
		Where("doctor_id = ? AND is_active = ?", doctorID, true).
		Distinct().
		Pluck("patient_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *doctorAssignmentRepo) IsActivePair(dbc dbctx.Context, doctorID, patientID uuid.UUID) (bool, error) {
	db := dbc.DB(r.db)
	var count int64
	if err := db.
		Model(&types.DoctorAssignment{}).
		Where("doctor_id = ? AND patient_id = ? AND is_active = ?", doctorID, patientID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
