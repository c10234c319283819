package apiv1

import (
	"expense-app-backend/controllers"
	notificationhandler "expense-app-backend/lib/notification/handler"
	"expense-app-backend/middleware"
	apimodels "expense-app-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

type notificationApiController struct {
	controllers.BaseAPIController
}

func InitNotificationApiRouters(app fiber.Router) {
	controller := notificationApiController{}
	app.Route("notifications", func(router fiber.Router) {
		router.Get("", controller.list)
	})
}

// @Summary Уведомления пользователя
// @Tags Уведомления
// @Description Список уведомлений текущего пользователя
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notifications [get]
func (c *notificationApiController) list(ctx *fiber.Ctx) error {
	userID := middleware.GetUserID(ctx)
	result, err := notificationhandler.Instance.List(userID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка уведомлений")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
