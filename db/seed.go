package db

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	authhelpers "approvals-backend/lib/utils/auth-helpers"
	"approvals-backend/models"
	dbmodels "approvals-backend/models/db"
)

const (
	seedUserCount     = 50
	seedApprovalCount = 1000
	seedUserPrefix    = "test-user"
	seedUserPassword  = "1234"
)

// SeedApprovals наполняет БД тестовыми пользователями и заявками,
// повторный запуск пересоздает тестовые данные
func SeedApprovals() error {
	log.Info("Запуск наполнения БД тестовыми данными")
	err := DB.
		Where("applicant_id IN (?)", DB.Model(&dbmodels.User{}).Select("id").Where("user_name LIKE ?", seedUserPrefix+"%")).
		Delete(&dbmodels.Approval{}).Error
	if err != nil {
		return errors.Wrap(err, "ошибка удаления тестовых заявок")
	}
	err = DB.
		Where("user_name LIKE ?", seedUserPrefix+"%").
		Delete(&dbmodels.User{}).Error
	if err != nil {
		return errors.Wrap(err, "ошибка удаления тестовых пользователей")
	}

	users := make([]dbmodels.User, 0, seedUserCount)
	for i := 0; i < seedUserCount; i++ {
		users = append(users, dbmodels.User{
			BaseModel: dbmodels.BaseModel{ID: uuid.NewString()},
			UserName:  fmt.Sprintf("%s%d", seedUserPrefix, i),
			Password:  authhelpers.GetMD5Hash(seedUserPassword),
			Email:     fmt.Sprintf("%s%d@example.com", seedUserPrefix, i),
			IsActive:  true,
		})
	}
	if err = DB.CreateInBatches(&users, 100).Error; err != nil {
		return errors.Wrap(err, "ошибка создания тестовых пользователей")
	}

	// 5:3:2 - на рассмотрении/согласовано/отклонено
	statuses := []models.ApprovalStatus{
		models.ApprovalStatusPending, models.ApprovalStatusPending, models.ApprovalStatusPending,
		models.ApprovalStatusPending, models.ApprovalStatusPending,
		models.ApprovalStatusApproved, models.ApprovalStatusApproved, models.ApprovalStatusApproved,
		models.ApprovalStatusRejected, models.ApprovalStatusRejected,
	}
	now := time.Now()
	approvals := make([]dbmodels.Approval, 0, seedApprovalCount)
	for i := 0; i < seedApprovalCount; i++ {
		status := statuses[rand.Intn(len(statuses))]
		submittedAt := now.Add(-time.Duration(rand.Int63n(int64(30 * 24 * time.Hour))))
		rec := dbmodels.Approval{
			BaseModel:   dbmodels.BaseModel{ID: uuid.NewString()},
			ApplicantID: users[rand.Intn(len(users))].ID,
			ApproverID:  users[rand.Intn(len(users))].ID,
			Status:      status,
			SubmittedAt: submittedAt,
			Title:       fmt.Sprintf("Тестовая заявка №%d", i+1),
			Content:     fmt.Sprintf("Содержимое тестовой заявки №%d", i+1),
		}
		if status.IsTerminal() {
			processedAt := submittedAt.Add(time.Duration(rand.Int63n(int64(now.Sub(submittedAt)) + 1)))
			rec.ProcessedAt = &processedAt
		}
		approvals = append(approvals, rec)
	}
	if err = DB.CreateInBatches(&approvals, 100).Error; err != nil {
		return errors.Wrap(err, "ошибка создания тестовых заявок")
	}
	log.Infof("Создано тестовых данных: пользователей - %d, заявок - %d", len(users), len(approvals))
	return nil
}
