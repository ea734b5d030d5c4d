package approvalhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"approvals-backend/lib/approval/notifier"
	approvalstore "approvals-backend/lib/approval/store"
	xlsexport "approvals-backend/lib/export/xls"
	"approvals-backend/models"
	approvalapimodels "approvals-backend/models/api/approval"
	dbmodels "approvals-backend/models/db"
)

func getInstance(t *testing.T, externalURL string) (impl, *gorm.DB) {
	dbConn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{})
	require.Nil(t, err)
	require.Nil(t, dbConn.AutoMigrate(&dbmodels.User{}, &dbmodels.Approval{}))
	notifier.NewProvider(externalURL)
	xlsexport.NewHandler()
	return impl{
		db:           dbConn,
		store:        approvalstore.NewInstance(dbConn),
		notifier:     notifier.Instance,
		xlsExport:    xlsexport.Instance,
		itemsPerPage: 2,
		orderBy:      models.SortOrderAsc,
	}, dbConn
}

func createUser(t *testing.T, dbConn *gorm.DB, userName string) dbmodels.User {
	rec := dbmodels.User{
		BaseModel: dbmodels.BaseModel{ID: uuid.NewString()},
		UserName:  userName,
		Email:     userName + "@test.local",
		IsActive:  true,
	}
	require.Nil(t, dbConn.Save(&rec).Error)
	return rec
}

func createApproval(t *testing.T, dbConn *gorm.DB, applicantID, approverID string, status models.ApprovalStatus) dbmodels.Approval {
	rec := dbmodels.Approval{
		BaseModel:   dbmodels.BaseModel{ID: uuid.NewString()},
		ApplicantID: applicantID,
		ApproverID:  approverID,
		Status:      status,
		SubmittedAt: time.Now().Add(-time.Hour),
		Title:       "Тестовая заявка",
		Content:     "Содержимое тестовой заявки",
	}
	if status.IsTerminal() {
		processedAt := time.Now()
		rec.ProcessedAt = &processedAt
	}
	require.Nil(t, dbConn.Save(&rec).Error)
	return rec
}

func getExternalStub(t *testing.T, statusCode int, body string, received *map[string]interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if received != nil {
			require.Nil(t, json.NewDecoder(r.Body).Decode(received))
		}
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}))
}

func reloadApproval(t *testing.T, dbConn *gorm.DB, id string) dbmodels.Approval {
	rec := dbmodels.Approval{}
	require.Nil(t, dbConn.Where("id = ?", id).First(&rec).Error)
	return rec
}

func TestProcessAction(t *testing.T) {
	ctx := context.Background()

	t.Run(`согласование заявки`, func(t *testing.T) {
		received := map[string]interface{}{}
		server := getExternalStub(t, http.StatusOK, `{"message": "승인"}`, &received)
		defer server.Close()
		i, dbConn := getInstance(t, server.URL)
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		result, err := i.ProcessAction(ctx, approver.ID, approvalapimodels.ApprovalActionData{
			ApprovalID: created.ID,
			Action:     ActionApproved,
		})
		require.Nil(t, err)
		require.True(t, result.Success)
		require.Contains(t, result.Message, "승인")

		rec := reloadApproval(t, dbConn, created.ID)
		require.Equal(t, models.ApprovalStatusApproved, rec.Status)
		require.NotNil(t, rec.ProcessedAt)
		require.False(t, rec.ProcessedAt.Before(rec.SubmittedAt))

		// во внешний сервис уходит уже зафиксированное решение
		require.Equal(t, created.ID, received["id"])
		require.Equal(t, applicant.ID, received["applicant"])
		require.Equal(t, approver.ID, received["approved_by"])
		require.Equal(t, string(models.ApprovalStatusApproved), received["status"])
		require.NotEmpty(t, received["submitted_at"])
		require.NotEmpty(t, received["processed_at"])
	})

	t.Run(`отклонение заявки`, func(t *testing.T) {
		server := getExternalStub(t, http.StatusOK, `{"message": "거부"}`, nil)
		defer server.Close()
		i, dbConn := getInstance(t, server.URL)
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		result, err := i.ProcessAction(ctx, approver.ID, approvalapimodels.ApprovalActionData{
			ApprovalID: created.ID,
			Action:     ActionRejected,
		})
		require.Nil(t, err)
		require.True(t, result.Success)
		require.Contains(t, result.Message, "거부")

		rec := reloadApproval(t, dbConn, created.ID)
		require.Equal(t, models.ApprovalStatusRejected, rec.Status)
		require.NotNil(t, rec.ProcessedAt)
	})

	t.Run(`заявка не найдена`, func(t *testing.T) {
		i, _ := getInstance(t, "http://localhost")
		approver := uuid.NewString()

		_, err := i.ProcessAction(ctx, approver, approvalapimodels.ApprovalActionData{
			ApprovalID: uuid.NewString(),
			Action:     ActionApproved,
		})
		require.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run(`нет прав на обработку`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")
		other := createUser(t, dbConn, "other")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		_, err := i.ProcessAction(ctx, other.ID, approvalapimodels.ApprovalActionData{
			ApprovalID: created.ID,
			Action:     ActionApproved,
		})
		require.True(t, errors.Is(err, ErrPermissionDenied))

		rec := reloadApproval(t, dbConn, created.ID)
		require.Equal(t, models.ApprovalStatusPending, rec.Status)
		require.Nil(t, rec.ProcessedAt)
	})

	t.Run(`некорректное действие`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		for _, action := range []string{"deleted", "APPROVED", ""} {
			_, err := i.ProcessAction(ctx, approver.ID, approvalapimodels.ApprovalActionData{
				ApprovalID: created.ID,
				Action:     action,
			})
			require.True(t, errors.Is(err, ErrInvalidAction))
		}

		rec := reloadApproval(t, dbConn, created.ID)
		require.Equal(t, models.ApprovalStatusPending, rec.Status)
		require.Nil(t, rec.ProcessedAt)
	})

	t.Run(`повторная обработка заявки`, func(t *testing.T) {
		server := getExternalStub(t, http.StatusOK, `{"message": "승인"}`, nil)
		defer server.Close()
		i, dbConn := getInstance(t, server.URL)
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		_, err := i.ProcessAction(ctx, approver.ID, approvalapimodels.ApprovalActionData{
			ApprovalID: created.ID,
			Action:     ActionApproved,
		})
		require.Nil(t, err)

		_, err = i.ProcessAction(ctx, approver.ID, approvalapimodels.ApprovalActionData{
			ApprovalID: created.ID,
			Action:     ActionRejected,
		})
		require.True(t, errors.Is(err, ErrAlreadyProcessed))

		// первое решение сохраняется
		rec := reloadApproval(t, dbConn, created.ID)
		require.Equal(t, models.ApprovalStatusApproved, rec.Status)
	})

	t.Run(`внешний сервис недоступен`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://127.0.0.1:1")
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		_, err := i.ProcessAction(ctx, approver.ID, approvalapimodels.ApprovalActionData{
			ApprovalID: created.ID,
			Action:     ActionApproved,
		})
		require.True(t, errors.Is(err, ErrTransportFailure))

		// решение зафиксировано несмотря на недоступность внешнего сервиса
		rec := reloadApproval(t, dbConn, created.ID)
		require.Equal(t, models.ApprovalStatusApproved, rec.Status)
		require.NotNil(t, rec.ProcessedAt)
	})

	t.Run(`внешний сервис вернул ошибку`, func(t *testing.T) {
		server := getExternalStub(t, http.StatusInternalServerError, `{"error": "server error"}`, nil)
		defer server.Close()
		i, dbConn := getInstance(t, server.URL)
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		result, err := i.ProcessAction(ctx, approver.ID, approvalapimodels.ApprovalActionData{
			ApprovalID: created.ID,
			Action:     ActionApproved,
		})
		require.Nil(t, err)
		require.False(t, result.Success)
		require.Equal(t, "запрос во внешний сервис не выполнен", result.Message)

		rec := reloadApproval(t, dbConn, created.ID)
		require.Equal(t, models.ApprovalStatusApproved, rec.Status)
	})

	t.Run(`ошибка сохранения заявки`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		rec, err := i.store.GetByID(created.ID)
		require.Nil(t, err)
		require.NotNil(t, rec)

		require.Nil(t, dbConn.Migrator().DropTable(&dbmodels.Approval{}))

		err = i.process(log.WithField("approval_id", rec.ID), rec, models.ApprovalStatusApproved)
		require.True(t, errors.Is(err, ErrStorageFailure))
		require.Equal(t, models.ApprovalStatusPending, rec.Status)
		require.Nil(t, rec.ProcessedAt)
	})
}

func TestList(t *testing.T) {
	t.Run(`постраничный список заявок`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		for j := 0; j < 5; j++ {
			createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)
		}
		createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusApproved)

		view, rowCount, err := i.List(approver.ID, approvalapimodels.ApprovalListFilter{Page: 1})
		require.Nil(t, err)
		require.Equal(t, int64(5), rowCount)
		require.Equal(t, 3, view.PageCount)
		require.Equal(t, 1, view.Page)
		require.Len(t, view.Approvals, 2)

		// страница за пределами списка приводится к последней
		view, _, err = i.List(approver.ID, approvalapimodels.ApprovalListFilter{Page: 99})
		require.Nil(t, err)
		require.Equal(t, 3, view.Page)
		require.Len(t, view.Approvals, 1)
	})

	t.Run(`пустой список заявок`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")

		view, rowCount, err := i.List(approver.ID, approvalapimodels.ApprovalListFilter{})
		require.Nil(t, err)
		require.Equal(t, int64(0), rowCount)
		require.Equal(t, 1, view.PageCount)
		require.Len(t, view.Approvals, 0)
	})

	t.Run(`выбранная заявка`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		created := createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		view, _, err := i.List(approver.ID, approvalapimodels.ApprovalListFilter{Page: 1, SelectedID: created.ID})
		require.Nil(t, err)
		require.NotNil(t, view.Selected)
		require.Equal(t, created.ID, view.Selected.ID)
		require.Empty(t, view.Notice)
	})

	t.Run(`выбранная заявка не существует`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")

		view, _, err := i.List(approver.ID, approvalapimodels.ApprovalListFilter{Page: 1, SelectedID: uuid.NewString()})
		require.Nil(t, err)
		require.Nil(t, view.Selected)
		require.Equal(t, "заявка уже обработана или не существует", view.Notice)
	})
}

func TestExportPending(t *testing.T) {
	t.Run(`выгрузка списка заявок`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")
		applicant := createUser(t, dbConn, "applicant")
		createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)
		createApproval(t, dbConn, applicant.ID, approver.ID, models.ApprovalStatusPending)

		buf, err := i.ExportPending(approver.ID)
		require.Nil(t, err)
		require.NotNil(t, buf)
		require.NotZero(t, buf.Len())
	})

	t.Run(`выгрузка без заявок`, func(t *testing.T) {
		i, dbConn := getInstance(t, "http://localhost")
		approver := createUser(t, dbConn, "approver")

		buf, err := i.ExportPending(approver.ID)
		require.Nil(t, err)
		require.NotNil(t, buf)
		require.NotZero(t, buf.Len())
	})
}
