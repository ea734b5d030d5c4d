package approvalhandler

import (
	"github.com/pkg/errors"

	"approvals-backend/lib/approval/notifier"
)

// Ошибки обработки заявки, контроллер сопоставляет их с HTTP статусами
// через errors.Is
var (
	ErrNotFound         = errors.New("заявка не найдена")
	ErrPermissionDenied = errors.New("нет прав на согласование или отклонение этой заявки")
	ErrInvalidAction    = errors.New("некорректное действие")
	ErrAlreadyProcessed = errors.New("заявка уже согласована или отклонена")
	ErrStorageFailure   = errors.New("ошибка сохранения заявки")
	ErrTransportFailure = notifier.ErrTransportFailure
)
