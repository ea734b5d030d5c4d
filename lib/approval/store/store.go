package approvalstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"approvals-backend/models"
	dbmodels "approvals-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.Approval) (id string, err error)
	GetByID(id string) (rec *dbmodels.Approval, err error)
	ListPending(approverID string, order models.SortOrder, page, limit int) (list []dbmodels.Approval, err error)
	PendingCount(approverID string) (rowCount int64, err error)
	Update(id string, updMap map[string]interface{}) error
	ProcessPending(id string, status models.ApprovalStatus, processedAt time.Time) (updated bool, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Approval) (id string, err error) {
	err = i.db.
		Omit("Applicant", "Approver").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.Approval, error) {
	rec := dbmodels.Approval{}
	err := i.db.
		Where("id = ?", id).
		Preload("Applicant").
		Preload("Approver").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ListPending(approverID string, order models.SortOrder, page, limit int) (list []dbmodels.Approval, err error) {
	list = []dbmodels.Approval{}
	tx := i.db.
		Where("approver_id = ?", approverID).
		Where("status = ?", models.ApprovalStatusPending).
		Preload("Applicant")
	if order == models.SortOrderDesc {
		tx = tx.Order("submitted_at DESC")
	} else {
		tx = tx.Order("submitted_at ASC")
	}
	i.setPage(tx, page, limit)
	err = tx.Find(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (i impl) PendingCount(approverID string) (rowCount int64, err error) {
	err = i.db.
		Model(&dbmodels.Approval{}).
		Where("approver_id = ?", approverID).
		Where("status = ?", models.ApprovalStatusPending).
		Count(&rowCount).
		Error
	if err != nil {
		return 0, err
	}
	return rowCount, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.Approval{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}

// ProcessPending переводит заявку в конечный статус, только если она еще
// на рассмотрении. updated == false - заявка не найдена или уже обработана
func (i impl) ProcessPending(id string, status models.ApprovalStatus, processedAt time.Time) (updated bool, err error) {
	tx := i.db.
		Model(&dbmodels.Approval{}).
		Where("id = ?", id).
		Where("status = ?", models.ApprovalStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": processedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (i impl) setPage(tx *gorm.DB, page, limit int) {
	offset := (page - 1) * limit
	tx.Limit(limit).Offset(offset)
}
