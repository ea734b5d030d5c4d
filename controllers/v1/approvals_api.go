package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"approvals-backend/controllers"
	approvalhandler "approvals-backend/lib/approval"
	"approvals-backend/middleware"
	apimodels "approvals-backend/models/api"
	approvalapimodels "approvals-backend/models/api/approval"
)

type approvalApiController struct {
	controllers.BaseAPIController
}

func InitApprovalApiRouters(app *fiber.App) {
	controller := approvalApiController{}
	app.Get("/", controller.list)
	app.Post("/action", controller.action)
	app.Get("/export", controller.export)
}

// @Summary Список заявок на рассмотрении
// @Tags Согласование заявок
// @Description Список заявок текущего согласующего со статусом pending
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   page			query	int		false	"страница списка (1,2,3..)"
// @Param   approval_id		query	string	false	"подробности по выбранной заявке"
// @Success 200 {object} apimodels.ScrollerResponse
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals [get]
func (c *approvalApiController) list(ctx *fiber.Ctx) error {
	var filter approvalapimodels.ApprovalListFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("не удалось получить параметры запроса"))
	}

	userID := middleware.GetUserID(ctx)
	view, rowCount, err := approvalhandler.Instance.List(userID, filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(view, rowCount))
}

// @Summary Согласовать или отклонить заявку
// @Tags Согласование заявок
// @Description Перевод заявки в конечный статус и отправка решения во внешний сервис
// @Param   Authorization	header	string									true	"Authorization token"
// @Param	body 			body	approvalapimodels.ApprovalActionData	true	"request body"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 502 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/action [post]
func (c *approvalApiController) action(ctx *fiber.Ctx) error {
	var payload approvalapimodels.ApprovalActionData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	userID := middleware.GetUserID(ctx)
	result, err := approvalhandler.Instance.ProcessAction(ctx.UserContext(), userID, payload)
	if err != nil {
		switch {
		case errors.Is(err, approvalhandler.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(err.Error()))
		case errors.Is(err, approvalhandler.ErrPermissionDenied):
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError(err.Error()))
		case errors.Is(err, approvalhandler.ErrInvalidAction):
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		case errors.Is(err, approvalhandler.ErrAlreadyProcessed):
			return ctx.Status(fiber.StatusConflict).JSON(apimodels.NewError(err.Error()))
		case errors.Is(err, approvalhandler.ErrTransportFailure):
			c.GetLogger(ctx).WithError(err).Error("Ошибка отправки решения во внешний сервис")
			return ctx.Status(fiber.StatusBadGateway).JSON(apimodels.NewError("ошибка внешнего сервиса"))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обработки заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Выгрузка заявок на рассмотрении в xlsx
// @Tags Согласование заявок
// @Description Выгрузка заявок текущего согласующего в xlsx
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/export [get]
func (c *approvalApiController) export(ctx *fiber.Ctx) error {
	userID := middleware.GetUserID(ctx)
	buf, err := approvalhandler.Instance.ExportPending(userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки списка заявок")
	}
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="approvals.xlsx"`)
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return ctx.Status(fiber.StatusOK).SendStream(buf)
}
