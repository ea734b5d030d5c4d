package approvalhandler

import (
	dbmodels "approvals-backend/models/db"
)

// checkPermission допускает действие только для назначенного согласующего
func checkPermission(rec dbmodels.Approval, userID string) error {
	if rec.ApproverID != userID {
		return ErrPermissionDenied
	}
	return nil
}
