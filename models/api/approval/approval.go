package approvalapimodels

import (
	"time"

	"github.com/pkg/errors"
)

type ApprovalView struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	ApplicantName string     `json:"applicant_name"`
	ApproverName  string     `json:"approver_name"`
	Status        string     `json:"status"`
	StatusName    string     `json:"status_name"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

type ApprovalListFilter struct {
	Page       int    `query:"page"`        // страница (1,2,3..), по умолчанию 1
	SelectedID string `query:"approval_id"` // опционально, подробности по выбранной записи
}

func (f ApprovalListFilter) GetPage() int {
	if f.Page > 0 {
		return f.Page
	}
	return 1
}

type ApprovalListView struct {
	Approvals []ApprovalView `json:"approvals"`
	Selected  *ApprovalView  `json:"selected,omitempty"`
	Notice    string         `json:"notice,omitempty"` // не блокирующее предупреждение по выбранной записи
	Page      int            `json:"page"`
	PageCount int            `json:"page_count"`
}

type ApprovalActionData struct {
	ApprovalID string `form:"approval_id" json:"approval_id"`
	Action     string `form:"action" json:"action"`
}

func (d ApprovalActionData) Validate() error {
	if d.ApprovalID == "" || d.Action == "" {
		return errors.New("не указаны обязательные параметры approval_id и action")
	}
	return nil
}

type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ExternalResponse struct {
	Message string `json:"message"`
}
