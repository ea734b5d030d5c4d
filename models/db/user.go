package dbmodels

import (
	"time"

	authapimodels "approvals-backend/models/api/auth"
)

type User struct {
	BaseModel
	UserName  string `gorm:"type:varchar(150);uniqueIndex"`
	Password  string `gorm:"type:varchar(128)"`
	Email     string `gorm:"type:varchar(255)"`
	IsActive  bool
	LastLogin time.Time
}

func (r User) ToModel() authapimodels.UserView {
	return authapimodels.UserView{
		ID:       r.ID,
		UserName: r.UserName,
		Email:    r.Email,
	}
}
