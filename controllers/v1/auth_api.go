package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"approvals-backend/controllers"
	authhandler "approvals-backend/lib/auth"
	apimodels "approvals-backend/models/api"
	authapimodels "approvals-backend/models/api/auth"
)

type authApiController struct {
	controllers.BaseAPIController
}

func InitAuthApiRouters(app *fiber.App) {
	controller := authApiController{}
	routes := app.Group("/auth")
	routes.Post("/login", controller.login)
}

// @Summary Вход в систему
// @Tags Авторизация
// @Description Выдача JWT по имени пользователя и паролю
// @Param	body 	body	authapimodels.LoginData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/auth/login [post]
func (c *authApiController) login(ctx *fiber.Ctx) error {
	var payload authapimodels.LoginData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	response, err := authhandler.Instance.Login(payload.UserName, payload.Password)
	if err != nil {
		if errors.Is(err, authhandler.ErrLoginFailed) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError(err.Error()))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка входа в систему")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(response))
}
