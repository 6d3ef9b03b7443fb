package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-edu/inkwell-backend/internal/http/middleware"
	"github.com/inkwell-edu/inkwell-backend/internal/http/response"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
	"github.com/inkwell-edu/inkwell-backend/internal/services"
)

type HomeHandler struct {
	homeService services.HomeService
}

func NewHomeHandler(homeService services.HomeService) *HomeHandler {
	return &HomeHandler{homeService: homeService}
}

func (hh *HomeHandler) GetHome(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondError(c, http.StatusUnauthorized, apierr.CodeUnauthorized, errors.New("not authenticated"))
		return
	}
	view, err := hh.homeService.View(c.Request.Context(), user)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}
