package apiv1

import (
	"expense-app-backend/controllers"
	approvalhandler "expense-app-backend/lib/approval"
	apimodels "expense-app-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

type approvalMaintenanceApiController struct {
	controllers.BaseAPIController
}

// InitApprovalMaintenanceApiRouters - служебные операции для внешнего планировщика
func InitApprovalMaintenanceApiRouters(app fiber.Router) {
	controller := approvalMaintenanceApiController{}
	app.Route("maintenance", func(router fiber.Router) {
		router.Post("escalate_pending", controller.escalatePending)
		router.Post("escalate_steps", controller.escalateSteps)
	})
}

// @Summary Эскалация просроченных согласований
// @Tags Обслуживание
// @Description Поиск и эскалация согласований с нарушенным сроком SLA
// @Success 200 {object} apimodels.Response{data=int}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/maintenance/escalate_pending [post]
func (c *approvalMaintenanceApiController) escalatePending(ctx *fiber.Ctx) error {
	count, err := approvalhandler.Instance.EscalatePendingPastSla()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка эскалации просроченных согласований")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(count))
}

// @Summary Эскалация просроченных шагов
// @Tags Обслуживание
// @Description Поиск и эскалация шагов согласования с нарушенным сроком SLA
// @Success 200 {object} apimodels.Response{data=int}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/maintenance/escalate_steps [post]
func (c *approvalMaintenanceApiController) escalateSteps(ctx *fiber.Ctx) error {
	count, err := approvalhandler.Instance.EscalatePendingStepsPastSla()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка эскалации просроченных шагов согласования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(count))
}
