package apiv1

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"approvals-backend/controllers"
	"approvals-backend/models"
	apimodels "approvals-backend/models/api"
	approvalapimodels "approvals-backend/models/api/approval"
)

type externalApiController struct {
	controllers.BaseAPIController
}

func InitExternalApiRouters(app *fiber.App) {
	controller := externalApiController{}
	app.Post("/external", controller.externalStub)
}

var statusMessages = map[models.ApprovalStatus]string{
	models.ApprovalStatusApproved: "Согласовано",
	models.ApprovalStatusRejected: "Отклонено",
}

// @Summary Тестовый эндпоинт внешнего сервиса
// @Tags Внешний сервис
// @Description Заглушка внешнего сервиса для проверки отправки решений (в дальнейшем будет удалена)
// @Param	body 	body	map[string]interface{}	true	"request body"
// @Success 200 {object} approvalapimodels.ExternalResponse
// @Failure 400
// @Failure 403
// @router /api/v1/external [post]
func (c *externalApiController) externalStub(ctx *fiber.Ctx) error {
	var data map[string]interface{}
	if err := json.Unmarshal(ctx.Body(), &data); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("некорректный формат JSON"))
	}
	status, _ := data["status"].(string)
	message, exist := statusMessages[models.ApprovalStatus(status)]
	if !exist {
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("некорректный запрос"))
	}
	return ctx.Status(fiber.StatusOK).JSON(approvalapimodels.ExternalResponse{Message: message})
}
