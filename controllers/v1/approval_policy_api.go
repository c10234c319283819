package apiv1

import (
	"expense-app-backend/controllers"
	approvalpolicyhandler "expense-app-backend/lib/approval-policy"
	"expense-app-backend/middleware"
	apimodels "expense-app-backend/models/api"
	approvalapimodels "expense-app-backend/models/api/approval"

	"github.com/gofiber/fiber/v2"
)

type approvalPolicyApiController struct {
	controllers.BaseAPIController
}

func InitApprovalPolicyApiRouters(app fiber.Router) {
	controller := approvalPolicyApiController{}
	app.Route("policies", func(router fiber.Router) {
		router.Get("default", controller.get)
		router.Put("default", middleware.AdminRoleRequired(), controller.replace)
		router.Get("preview/:id", controller.preview)
	})
}

// @Summary Активная политика согласования
// @Tags Политика согласования
// @Description Получение активной политики. При первом обращении создается политика по умолчанию
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.PolicyView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/default [get]
func (c *approvalPolicyApiController) get(ctx *fiber.Ctx) error {
	rec, err := approvalpolicyhandler.Instance.GetDefault()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения политики согласования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(approvalapimodels.PolicyConvert(*rec)))
}

// @Summary Замена правил политики
// @Tags Политика согласования
// @Description Замена набора правил активной политики целиком
// @Param   Authorization	header	string								true	"Authorization token"
// @Param	body 			body	approvalapimodels.PolicyUpdateData	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.PolicyView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/default [put]
func (c *approvalPolicyApiController) replace(ctx *fiber.Ctx) error {
	var payload approvalapimodels.PolicyUpdateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	rec, err := approvalpolicyhandler.Instance.Replace(string(payload.Rules))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления политики согласования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(approvalapimodels.PolicyConvert(*rec)))
}

// @Summary План согласования расхода
// @Tags Политика согласования
// @Description Вычисление плана шагов согласования для расхода без отправки
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "expense ID"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.StepPlanView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/preview/{id} [get]
func (c *approvalPolicyApiController) preview(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	plans, hMsg, err := approvalpolicyhandler.Instance.PreviewForExpense(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка вычисления плана согласования")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	result := make([]approvalapimodels.StepPlanView, 0, len(plans))
	for _, plan := range plans {
		result = append(result, approvalapimodels.StepPlanView{
			Role:     plan.Role,
			SlaHours: plan.SlaHours,
		})
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
