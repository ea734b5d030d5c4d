package dbmodels

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"approvals-backend/models"
)

func TestToExternalData(t *testing.T) {
	submittedAt := time.Date(2026, 5, 12, 10, 30, 0, 0, time.UTC)
	rec := Approval{
		BaseModel:   BaseModel{ID: "e3b45f1c-1111-2222-3333-444455556666"},
		ApplicantID: "applicant-id",
		ApproverID:  "approver-id",
		Status:      models.ApprovalStatusPending,
		SubmittedAt: submittedAt,
		Title:       "Тестовая заявка",
		Content:     "Содержимое",
	}

	t.Run(`заявка на рассмотрении`, func(t *testing.T) {
		data := rec.ToExternalData()
		require.Equal(t, rec.ID, data["id"])
		require.Equal(t, "applicant-id", data["applicant"])
		require.Equal(t, "approver-id", data["approved_by"])
		require.Equal(t, "pending", data["status"])
		require.Equal(t, "2026-05-12T10:30:00Z", data["submitted_at"])
		require.Nil(t, data["processed_at"])
		require.Equal(t, "Тестовая заявка", data["title"])
		require.Equal(t, "Содержимое", data["content"])
	})

	t.Run(`обработанная заявка`, func(t *testing.T) {
		processedAt := submittedAt.Add(time.Hour)
		processed := rec
		processed.Status = models.ApprovalStatusApproved
		processed.ProcessedAt = &processedAt

		data := processed.ToExternalData()
		require.Equal(t, "approved", data["status"])
		require.Equal(t, "2026-05-12T11:30:00Z", data["processed_at"])

		// представление сериализуется без ошибок
		_, err := json.Marshal(data)
		require.Nil(t, err)
	})
}
