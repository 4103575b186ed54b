package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skarbek/skarbek-api/internal/api/handler/v1/response"
)

// HandleHealthcheck godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.StatusResponse
// @Router       /health [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.StatusResponse{Status: "ok"})
}
