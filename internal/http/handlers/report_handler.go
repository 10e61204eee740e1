package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/preloved-backend/internal/http/handlers/common"
	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/service"
	"github.com/ignatzorin/preloved-backend/internal/validation"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(s *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: s}
}

// CreateReport POST /reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}

	var req validation.CreateReportRequest
	if err := validation.Decode(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	report, err := h.svc.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Created(c, report)
}

// ListMyReports GET /reports
func (h *ReportHandler) ListMyReports(c *gin.Context) {
	user, ok := common.CurrentUser(c)
	if !ok {
		return
	}
	p := common.GetPagination(c)

	reports, err := h.svc.ListMine(c.Request.Context(), user.ID, p.Fetch(), p.Offset)
	if err != nil {
		common.Fail(c, err)
		return
	}
	response.Paginated(c, reports, p.Page, p.Limit)
}
