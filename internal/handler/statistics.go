package handler

import (
	"fmt"
	"net/http"

	"cafebook/internal/dto"
	"cafebook/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatisticsHandler struct{ svc service.StatisticsService }

func NewStatisticsHandler(svc service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{svc: svc}
}

// Report godoc
// @Summary Thống kê doanh thu theo ngày, tuần hoặc tháng
// @Tags statistics
// @Produce json
// @Param type query string true "day | week | month"
// @Param date query string false "YYYY-MM-DD, mặc định hôm nay"
// @Success 200 {object} dto.StatisticsResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/statistics [get]
func (h *StatisticsHandler) Report(c *gin.Context) {
	var q dto.StatisticsQuery
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StatisticsHandler) Export(c *gin.Context) {
	var q dto.StatisticsQuery
	if !bindQuery(c, &q) {
		return
	}
	data, err := h.svc.Export(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	name := fmt.Sprintf("thong_ke_%s_%s.xlsx", q.Type, q.Date)
	if q.Date == "" {
		name = fmt.Sprintf("thong_ke_%s.xlsx", q.Type)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
