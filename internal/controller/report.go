package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/payments-gateway/internal/reporting"
)

// Retrospective summarizes the payment attempts recorded since startup.
func (ctl *Controller) Retrospective(c *gin.Context) {
	if ctl.recorder == nil {
		respondError(c, http.StatusNotFound, codeServerError, "Attempt recording is not enabled.")
		return
	}
	c.JSON(http.StatusOK, reporting.GenerateRetrospective(ctl.recorder.Records()))
}
