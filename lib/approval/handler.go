package approvalhandler

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"approvals-backend/config"
	"approvals-backend/db"
	"approvals-backend/lib/approval/notifier"
	approvalstore "approvals-backend/lib/approval/store"
	xlsexport "approvals-backend/lib/export/xls"
	"approvals-backend/lib/smtp"
	"approvals-backend/lib/telemetry"
	"approvals-backend/models"
	approvalapimodels "approvals-backend/models/api/approval"
	dbmodels "approvals-backend/models/db"
)

type Provider interface {
	List(userID string, filter approvalapimodels.ApprovalListFilter) (view approvalapimodels.ApprovalListView, rowCount int64, err error)
	ProcessAction(ctx context.Context, userID string, data approvalapimodels.ApprovalActionData) (result approvalapimodels.ActionResult, err error)
	ExportPending(userID string) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		db:           db.DB,
		store:        approvalstore.NewInstance(db.DB),
		notifier:     notifier.Instance,
		xlsExport:    xlsexport.Instance,
		itemsPerPage: config.Conf.Approvals.ItemsPerPage,
		orderBy:      models.SortOrder(config.Conf.Approvals.OrderBy),
	}
}

type impl struct {
	db           *gorm.DB
	store        approvalstore.Provider
	notifier     notifier.Provider
	xlsExport    xlsexport.Provider
	itemsPerPage int
	orderBy      models.SortOrder
}

const (
	operationProcess  = "process"
	errTypeProcessing = "approval_processing_failed"
)

func (i impl) List(userID string, filter approvalapimodels.ApprovalListFilter) (view approvalapimodels.ApprovalListView, rowCount int64, err error) {
	logger := log.WithField("user_id", userID)
	rowCount, err = i.store.PendingCount(userID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения количества заявок")
		return view, 0, errors.New("ошибка получения списка заявок")
	}
	limit := i.itemsPerPage
	pageCount := int((rowCount + int64(limit) - 1) / int64(limit))
	if pageCount == 0 {
		pageCount = 1
	}
	page := filter.GetPage()
	if page > pageCount {
		page = pageCount
	}
	list, err := i.store.ListPending(userID, i.orderBy, page, limit)
	if err != nil {
		logger.WithError(err).Error("ошибка получения списка заявок")
		return view, 0, errors.New("ошибка получения списка заявок")
	}
	view = approvalapimodels.ApprovalListView{
		Approvals: make([]approvalapimodels.ApprovalView, 0, len(list)),
		Page:      page,
		PageCount: pageCount,
	}
	for _, rec := range list {
		view.Approvals = append(view.Approvals, rec.ToModel())
	}
	if filter.SelectedID != "" {
		selected, err := i.store.GetByID(filter.SelectedID)
		if err != nil {
			logger.WithError(err).Error("ошибка поиска выбранной заявки")
			return view, 0, errors.New("ошибка получения списка заявок")
		}
		if selected == nil {
			logger.Error("запрошена уже обработанная или несуществующая заявка")
			view.Notice = "заявка уже обработана или не существует"
		} else {
			selectedView := selected.ToModel()
			view.Selected = &selectedView
		}
	}
	return view, rowCount, nil
}

func (i impl) ProcessAction(ctx context.Context, userID string, data approvalapimodels.ApprovalActionData) (result approvalapimodels.ActionResult, err error) {
	logger := log.
		WithField("approval_id", data.ApprovalID).
		WithField("user_id", userID)
	start := time.Now()
	result, err = i.processAction(ctx, logger, userID, data)
	if err != nil {
		telemetry.Instance.TrackApprovalOperation(operationProcess, telemetry.StatusFail, time.Since(start))
		telemetry.Instance.TrackError(errTypeProcessing, telemetry.ComponentApprovals, telemetry.SeverityError)
		return result, err
	}
	telemetry.Instance.TrackApprovalOperation(operationProcess, telemetry.StatusSuccess, time.Since(start))
	return result, nil
}

func (i impl) processAction(ctx context.Context, logger *log.Entry, userID string, data approvalapimodels.ApprovalActionData) (result approvalapimodels.ActionResult, err error) {
	rec, err := i.store.GetByID(data.ApprovalID)
	if err != nil {
		logger.WithError(err).Error("ошибка поиска заявки")
		return result, errors.Wrap(ErrStorageFailure, err.Error())
	}
	if rec == nil {
		logger.Debug("заявка не найдена")
		return result, ErrNotFound
	}
	if err = checkPermission(*rec, userID); err != nil {
		return result, err
	}
	targetStatus, err := validateAction(data.Action)
	if err != nil {
		return result, err
	}
	if err = i.process(logger, rec, targetStatus); err != nil {
		return result, err
	}
	i.notifyApplicant(logger, rec)
	outcome, err := i.notifier.Send(ctx, rec.ToExternalData())
	if err != nil {
		// решение уже зафиксировано, откат не выполняется
		return result, err
	}
	if !outcome.OK {
		return approvalapimodels.ActionResult{
			Message: "запрос во внешний сервис не выполнен",
		}, nil
	}
	return approvalapimodels.ActionResult{
		Success: true,
		Message: fmt.Sprintf("%s - успешно", outcome.Message),
	}, nil
}

// process фиксирует решение по заявке в одной транзакции, заявка
// обновляется только из статуса pending
func (i impl) process(logger *log.Entry, rec *dbmodels.Approval, target models.ApprovalStatus) error {
	oldStatus := rec.Status
	processedAt := time.Now()
	err := i.db.Transaction(func(tx *gorm.DB) error {
		updated, err := approvalstore.NewInstance(tx).ProcessPending(rec.ID, target, processedAt)
		if err != nil {
			return errors.Wrap(ErrStorageFailure, err.Error())
		}
		if !updated {
			return ErrAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			logger.Debug("заявка уже согласована или отклонена")
			return err
		}
		logger.WithError(err).Error("ошибка обработки заявки")
		if errors.Is(err, ErrStorageFailure) {
			return err
		}
		return errors.Wrap(ErrStorageFailure, err.Error())
	}
	rec.Status = target
	rec.ProcessedAt = &processedAt
	logger.Debugf("Статус заявки изменен (%s -> %s)", oldStatus, rec.Status)
	return nil
}

func (i impl) notifyApplicant(logger *log.Entry, rec *dbmodels.Approval) {
	if smtp.Instance == nil || rec.Applicant == nil || rec.Applicant.Email == "" {
		return
	}
	message := fmt.Sprintf("Заявка %q: %s", rec.Title, rec.Status.ToHuman())
	if err := smtp.Instance.SendEMail(rec.Applicant.Email, message, "Решение по заявке"); err != nil {
		logger.WithError(err).Warn("не удалось отправить письмо заявителю")
	}
}

func (i impl) ExportPending(userID string) (*bytes.Buffer, error) {
	logger := log.WithField("user_id", userID)
	rowCount, err := i.store.PendingCount(userID)
	if err != nil {
		logger.WithError(err).Error("ошибка получения количества заявок")
		return nil, errors.New("ошибка выгрузки списка заявок")
	}
	list := []dbmodels.Approval{}
	if rowCount > 0 {
		list, err = i.store.ListPending(userID, i.orderBy, 1, int(rowCount))
		if err != nil {
			logger.WithError(err).Error("ошибка получения списка заявок")
			return nil, errors.New("ошибка выгрузки списка заявок")
		}
	}
	return i.xlsExport.ExportApprovalList(list)
}
