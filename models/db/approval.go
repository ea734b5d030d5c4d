package dbmodels

import (
	"time"

	"approvals-backend/models"
	approvalapimodels "approvals-backend/models/api/approval"
)

type Approval struct {
	BaseModel
	ApplicantID string                `gorm:"type:varchar(36);index"`
	Applicant   *User                 `gorm:"foreignKey:ApplicantID"`
	ApproverID  string                `gorm:"type:varchar(36);index"`
	Approver    *User                 `gorm:"foreignKey:ApproverID"`
	Status      models.ApprovalStatus `gorm:"type:varchar(10);index"`
	SubmittedAt time.Time
	ProcessedAt *time.Time
	Title       string `gorm:"type:varchar(200)"`
	Content     string
}

func (r Approval) ToModel() approvalapimodels.ApprovalView {
	view := approvalapimodels.ApprovalView{
		ID:          r.ID,
		Title:       r.Title,
		Content:     r.Content,
		Status:      string(r.Status),
		StatusName:  r.Status.ToHuman(),
		SubmittedAt: r.SubmittedAt,
		ProcessedAt: r.ProcessedAt,
	}
	if r.Applicant != nil {
		view.ApplicantName = r.Applicant.UserName
	}
	if r.Approver != nil {
		view.ApproverName = r.Approver.UserName
	}
	return view
}

// ToExternalData формирует плоское представление записи для внешнего API,
// все даты приводятся к RFC3339
func (r Approval) ToExternalData() map[string]interface{} {
	data := map[string]interface{}{
		"id":           r.ID,
		"applicant":    r.ApplicantID,
		"approved_by":  r.ApproverID,
		"status":       string(r.Status),
		"submitted_at": r.SubmittedAt.Format(time.RFC3339),
		"processed_at": nil,
		"title":        r.Title,
		"content":      r.Content,
	}
	if r.ProcessedAt != nil {
		data["processed_at"] = r.ProcessedAt.Format(time.RFC3339)
	}
	return data
}
