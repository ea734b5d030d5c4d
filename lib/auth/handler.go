package authhandler

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"approvals-backend/db"
	"approvals-backend/lib/telemetry"
	userstore "approvals-backend/lib/users/store"
	authhelpers "approvals-backend/lib/utils/auth-helpers"
	authutils "approvals-backend/lib/utils/auth-utils"
	authapimodels "approvals-backend/models/api/auth"
)

var ErrLoginFailed = errors.New("не удалось войти, проверьте имя пользователя и пароль")

type Provider interface {
	Login(userName, password string) (response authapimodels.JWTResponse, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: userstore.NewInstance(db.DB),
	}
}

type impl struct {
	store userstore.Provider
}

const activityLogin = "login"

func (i impl) Login(userName, password string) (response authapimodels.JWTResponse, err error) {
	logger := log.WithField("user_name", userName)
	response, err = i.login(logger, userName, password)
	if err != nil {
		telemetry.Instance.TrackUserActivity(activityLogin, telemetry.StatusFail)
		telemetry.Instance.TrackError("user_login_failed", telemetry.ComponentUsers, telemetry.SeverityError)
		return response, err
	}
	telemetry.Instance.TrackUserActivity(activityLogin, telemetry.StatusSuccess)
	return response, nil
}

func (i impl) login(logger *log.Entry, userName, password string) (response authapimodels.JWTResponse, err error) {
	user, err := i.store.FindByUserName(userName)
	if err != nil {
		logger.WithError(err).Error("ошибка поиска пользователя")
		return response, err
	}
	if user == nil {
		logger.Debug("пользователь не найден")
		return response, ErrLoginFailed
	}
	if !user.IsActive {
		logger.Debug("пользователь заблокирован")
		return response, ErrLoginFailed
	}
	if authhelpers.GetMD5Hash(password) != user.Password {
		logger.Debug("пользователь не прошел проверку пароля")
		return response, ErrLoginFailed
	}
	tokenString, err := authutils.GetToken(user.ID, user.UserName)
	if err != nil {
		logger.WithError(err).Error("ошибка генерации JWT")
		return response, err
	}
	err = i.store.Update(user.ID, map[string]interface{}{"LastLogin": time.Now()})
	if err != nil {
		logger.WithError(err).Error("ошибка обновления даты последнего входа")
	}
	return authapimodels.JWTResponse{
		Token: tokenString,
	}, nil
}
