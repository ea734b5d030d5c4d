package approvalhandler

import (
	"approvals-backend/models"
)

const (
	ActionApproved = "approved"
	ActionRejected = "rejected"
)

var validActions = map[string]models.ApprovalStatus{
	ActionApproved: models.ApprovalStatusApproved,
	ActionRejected: models.ApprovalStatusRejected,
}

// validateAction сопоставляет действие с конечным статусом заявки
func validateAction(action string) (models.ApprovalStatus, error) {
	status, exist := validActions[action]
	if !exist {
		return "", ErrInvalidAction
	}
	return status, nil
}
