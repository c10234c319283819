package apiv1

import (
	"expense-app-backend/controllers"
	approvalhandler "expense-app-backend/lib/approval"
	xlsexport "expense-app-backend/lib/export/xls"
	"expense-app-backend/middleware"
	apimodels "expense-app-backend/models/api"
	approvalapimodels "expense-app-backend/models/api/approval"

	"github.com/gofiber/fiber/v2"
)

type approvalApiController struct {
	controllers.BaseAPIController
}

func InitApprovalApiRouters(app fiber.Router) {
	controller := approvalApiController{}
	app.Route("approvals", func(router fiber.Router) {
		router.Post("submit", controller.submit)
		router.Get("my_requests", controller.myRequests)
		router.Get("to_approve", controller.toApprove)
		router.Get("export", controller.export)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Post("approve", controller.approve)
			idRoute.Post("reject", controller.reject)
			idRoute.Get("audit", controller.audit)
		})
	})
}

// @Summary Отправка расхода на согласование
// @Tags Согласование расходов
// @Description Отправка расхода на согласование. Повторная отправка возвращает существующее согласование
// @Param   Authorization	header	string							true	"Authorization token"
// @Param   X-Company-Id	header	string							false	"Область видимости компании"
// @Param	body 			body	approvalapimodels.SubmitData	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/submit [post]
func (c *approvalApiController) submit(ctx *fiber.Ctx) error {
	var payload approvalapimodels.SubmitData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	email := middleware.GetUserEmail(ctx)
	companyScope := middleware.GetCompanyScope(ctx)
	result, hMsg, err := approvalhandler.Instance.Submit(email, companyScope, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отправки расхода на согласование")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Согласовать текущий шаг
// @Tags Согласование расходов
// @Description Согласовать текущий шаг согласования
// @Param   Authorization	header	string							true	"Authorization token"
// @Param   X-Company-Id	header	string							false	"Область видимости компании"
// @Param   id          	path    string  				    	true    "rec ID"
// @Param	body 			body	approvalapimodels.DecisionData	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/{id}/approve [post]
func (c *approvalApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload approvalapimodels.DecisionData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	email := middleware.GetUserEmail(ctx)
	companyScope := middleware.GetCompanyScope(ctx)
	result, hMsg, err := approvalhandler.Instance.Approve(email, companyScope, id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка согласования расхода")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Отклонить текущий шаг
// @Tags Согласование расходов
// @Description Отклонить текущий шаг. Отклонение завершает согласование целиком
// @Param   Authorization	header	string							true	"Authorization token"
// @Param   X-Company-Id	header	string							false	"Область видимости компании"
// @Param   id          	path    string  				    	true    "rec ID"
// @Param	body 			body	approvalapimodels.DecisionData	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/{id}/reject [post]
func (c *approvalApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload approvalapimodels.DecisionData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	email := middleware.GetUserEmail(ctx)
	companyScope := middleware.GetCompanyScope(ctx)
	result, hMsg, err := approvalhandler.Instance.Reject(email, companyScope, id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отклонения расхода")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Мои запросы на согласование
// @Tags Согласование расходов
// @Description Список согласований, отправленных текущим пользователем
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/my_requests [get]
func (c *approvalApiController) myRequests(ctx *fiber.Ctx) error {
	email := middleware.GetUserEmail(ctx)
	result, hMsg, err := approvalhandler.Instance.MyRequests(email)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка согласований")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Согласования на рассмотрении
// @Tags Согласование расходов
// @Description Список согласований, назначенных текущему пользователю
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/to_approve [get]
func (c *approvalApiController) toApprove(ctx *fiber.Ctx) error {
	email := middleware.GetUserEmail(ctx)
	result, hMsg, err := approvalhandler.Instance.ToApprove(email)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка согласований")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary История согласования
// @Tags Согласование расходов
// @Description История действий по согласованию
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.AuditView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/{id}/audit [get]
func (c *approvalApiController) audit(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, hMsg, err := approvalhandler.Instance.Audit(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории согласования")
	}
	if hMsg != "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(hMsg))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Выгрузка реестра согласований
// @Tags Согласование расходов
// @Description Выгрузка реестра согласований текущей области видимости в xlsx
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   X-Company-Id	header	string	false	"Область видимости компании"
// @Success 200 {file} file
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/export [get]
func (c *approvalApiController) export(ctx *fiber.Ctx) error {
	companyScope := middleware.GetCompanyScope(ctx)
	list, err := approvalhandler.Instance.Register(companyScope)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения реестра согласований")
	}
	buf, err := xlsexport.Instance.ExportApprovalRegister(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки реестра согласований")
	}
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="approvals.xlsx"`)
	return ctx.Status(fiber.StatusOK).Send(buf.Bytes())
}
