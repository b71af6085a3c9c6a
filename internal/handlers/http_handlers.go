package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"classlottery/internal/models"
	"classlottery/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// APIRoot is the path prefix of every lottery route.
const APIRoot = "/api/lottery"

// spreadsheetContentType is advertised for exports even though the body is
// CSV text.
const spreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	service     *services.LotteryService
	memberships *services.MembershipService
	exporter    *services.ExportService
	store       Pinger
}

// NewHTTPHandler creates a new HTTPHandler. store may be nil.
func NewHTTPHandler(
	service *services.LotteryService,
	memberships *services.MembershipService,
	exporter *services.ExportService,
	store Pinger,
) *HTTPHandler {
	return &HTTPHandler{
		service:     service,
		memberships: memberships,
		exporter:    exporter,
		store:       store,
	}
}

// drawQuery holds the query parameters shared by the draw endpoints.
type drawQuery struct {
	Count     int    `form:"count,default=1"`
	Gender    string `form:"gender"`
	ClassName string `form:"className"`
	SessionID string `form:"sessionId"`
}

func (q drawQuery) filter() services.DrawFilter {
	return services.DrawFilter{Gender: q.Gender, ClassName: q.ClassName}
}

type historyQuery struct {
	SessionID string `form:"sessionId"`
	Limit     int    `form:"limit"`
}

type saveGroupingRequest struct {
	Groups    [][]models.Student `json:"groups"`
	GroupSize int                `json:"groupSize"`
	Gender    string             `json:"gender"`
	ClassName string             `json:"className"`
	SessionID string             `json:"sessionId"`
}

type savePrizeDrawRequest struct {
	PrizeName string           `json:"prizeName"`
	Winners   []models.Student `json:"winners"`
	SessionID string           `json:"sessionId"`
}

type batchPrizeDrawRequest struct {
	Prizes    []models.PrizeTier `json:"prizes"`
	Gender    string             `json:"gender"`
	ClassName string             `json:"className"`
	SessionID string             `json:"sessionId"`
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Health)

	api := router.Group(APIRoot)

	api.GET("/students", h.ListStudents)
	api.GET("/students/:id", h.GetStudent)
	api.POST("/students/import", h.UploadStudentsCSV)
	api.GET("/stats", h.GetStatistics)
	api.GET("/classes", h.GetClasses)

	api.GET("/draw", h.Draw)
	api.GET("/draw-multiple", h.DrawMultiple)
	api.GET("/history", h.GetHistory)
	api.DELETE("/history", h.ClearHistory)
	api.DELETE("/history/:id", h.DeleteHistory)

	api.POST("/grouping", h.SaveGrouping)
	api.GET("/grouping-history", h.GetGroupingHistory)
	api.GET("/grouping-history/:batchId", h.GetGroupingBatch)
	api.DELETE("/grouping-history", h.ClearGroupingHistory)
	api.DELETE("/grouping-history/:batchId", h.DeleteGroupingBatch)

	api.POST("/prize-draw", h.SavePrizeDraw)
	api.POST("/prize-draw-batch", h.DrawPrizeBatch)
	api.GET("/prize-history", h.GetPrizeHistory)
	api.DELETE("/prize-history", h.ClearPrizeHistory)
	api.DELETE("/prize-history/:id", h.DeletePrizeHistory)

	api.POST("/membership", h.CreateMembership)
	api.GET("/membership/check/:userId", h.CheckMembership)
	api.POST("/export/excel", h.ExportExcel)
}

// respondError maps service errors to status codes. Unexpected errors are
// logged and hidden behind a generic message.
func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	default:
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "服务器内部错误"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "无效的ID")
		return 0, false
	}
	return id, true
}

// Health reports liveness and store reachability.
func (h *HTTPHandler) Health(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			logger.Warningf("Health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListStudents handles GET /students.
func (h *HTTPHandler) ListStudents(c *gin.Context) {
	students, err := h.service.ListStudents(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent handles GET /students/:id.
func (h *HTTPHandler) GetStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	student, err := h.service.GetStudent(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *HTTPHandler) GetStatistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) GetClasses(c *gin.Context) {
	classes, err := h.service.Classes(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, classes)
}

// Draw handles GET /draw: one random student, recorded in the history.
func (h *HTTPHandler) Draw(c *gin.Context) {
	var q drawQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "请求参数错误")
		return
	}
	logger.Infof("Draw gender=%q class=%q session=%q", q.Gender, q.ClassName, q.SessionID)

	student, err := h.service.Draw(c.Request.Context(), q.filter(), q.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

// DrawMultiple handles GET /draw-multiple.
func (h *HTTPHandler) DrawMultiple(c *gin.Context) {
	var q drawQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "抽取数量必须在 1-50 之间")
		return
	}
	logger.Infof("Batch draw count=%d gender=%q class=%q session=%q", q.Count, q.Gender, q.ClassName, q.SessionID)

	students, err := h.service.DrawMultiple(c.Request.Context(), q.Count, q.filter(), q.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *HTTPHandler) GetHistory(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "请求参数错误")
		return
	}
	records, err := h.service.DrawHistory(c.Request.Context(), q.SessionID, q.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *HTTPHandler) ClearHistory(c *gin.Context) {
	if err := h.service.ClearDrawHistory(c.Request.Context(), c.Query("sessionId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "历史记录已清空"})
}

func (h *HTTPHandler) DeleteHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteDrawHistory(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "历史记录已删除"})
}

// SaveGrouping handles POST /grouping. Client-computed groups are stored as
// given; without groups the server shuffles the filtered roster itself.
func (h *HTTPHandler) SaveGrouping(c *gin.Context) {
	var req saveGroupingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体格式错误")
		return
	}

	var (
		result *services.GroupingResult
		err    error
	)
	if len(req.Groups) > 0 {
		result, err = h.service.SaveGrouping(c.Request.Context(), req.Groups, req.GroupSize, req.SessionID)
	} else {
		filter := services.DrawFilter{Gender: req.Gender, ClassName: req.ClassName}
		result, err = h.service.GenerateGrouping(c.Request.Context(), req.GroupSize, filter, req.SessionID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "分组结果已保存",
		"batchId": result.BatchID,
		"groups":  result.Groups,
	})
}

func (h *HTTPHandler) GetGroupingHistory(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "请求参数错误")
		return
	}
	records, err := h.service.GroupingHistory(c.Request.Context(), q.SessionID, q.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *HTTPHandler) GetGroupingBatch(c *gin.Context) {
	records, err := h.service.GroupingBatch(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *HTTPHandler) ClearGroupingHistory(c *gin.Context) {
	if err := h.service.ClearGroupingHistory(c.Request.Context(), c.Query("sessionId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "分组历史记录已清空"})
}

func (h *HTTPHandler) DeleteGroupingBatch(c *gin.Context) {
	if err := h.service.DeleteGroupingBatch(c.Request.Context(), c.Param("batchId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "分组历史批次已删除"})
}

// SavePrizeDraw handles POST /prize-draw with winners picked by the client.
func (h *HTTPHandler) SavePrizeDraw(c *gin.Context) {
	var req savePrizeDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体格式错误")
		return
	}
	record, err := h.service.SavePrizeDraw(c.Request.Context(), req.PrizeName, req.Winners, req.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "抽奖结果已保存", "id": record.ID})
}

// DrawPrizeBatch handles POST /prize-draw-batch: all tiers drawn server-side
// under one batch id.
func (h *HTTPHandler) DrawPrizeBatch(c *gin.Context) {
	var req batchPrizeDrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体格式错误")
		return
	}
	logger.Infof("Prize batch tiers=%d gender=%q class=%q", len(req.Prizes), req.Gender, req.ClassName)

	filter := services.DrawFilter{Gender: req.Gender, ClassName: req.ClassName}
	result, err := h.service.DrawPrizes(c.Request.Context(), req.Prizes, filter, req.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "批量抽奖完成",
		"batchId": result.BatchID,
		"results": result.Results,
	})
}

func (h *HTTPHandler) GetPrizeHistory(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "请求参数错误")
		return
	}
	records, err := h.service.PrizeHistory(c.Request.Context(), q.SessionID, q.Limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *HTTPHandler) ClearPrizeHistory(c *gin.Context) {
	if err := h.service.ClearPrizeHistory(c.Request.Context(), c.Query("sessionId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "抽奖历史记录已清空"})
}

func (h *HTTPHandler) DeletePrizeHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeletePrizeHistory(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "抽奖历史记录已删除"})
}

// CreateMembership handles POST /membership.
func (h *HTTPHandler) CreateMembership(c *gin.Context) {
	var req services.CreateMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体格式错误")
		return
	}
	membership, err := h.memberships.CreateMembership(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "会员开通成功", "membership": membership})
}

func (h *HTTPHandler) CheckMembership(c *gin.Context) {
	status, err := h.memberships.CheckMembership(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// ExportExcel handles POST /export/excel. The body is CSV with a
// spreadsheet content type.
func (h *HTTPHandler) ExportExcel(c *gin.Context) {
	var req services.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求体格式错误")
		return
	}

	file, err := h.exporter.Export(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment;filename="+file.Filename)
	c.Data(http.StatusOK, spreadsheetContentType, file.Content)
}
