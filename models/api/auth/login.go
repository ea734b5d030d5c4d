package authapimodels

import "github.com/pkg/errors"

type LoginData struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

func (d LoginData) Validate() error {
	if d.UserName == "" {
		return errors.New("не указано имя пользователя")
	}
	if d.Password == "" {
		return errors.New("не указан пароль")
	}
	return nil
}

type JWTResponse struct {
	Token string `json:"token"`
}

type UserView struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
}
