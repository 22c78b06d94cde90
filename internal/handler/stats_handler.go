package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/response"
	"github.com/skylarnam/KakaoChatParserV2/internal/service"
)

const dateLayout = "2006-01-02"

const (
	msgInvalidDate     = "올바른 날짜 형식이 아닙니다 (YYYY-MM-DD)"
	msgInvalidDays     = "올바른 일수가 아닙니다"
	msgMissingUserName = "사용자 이름이 필요합니다"
)

type StatsHandler struct {
	statsService service.StatsService
	logger       *zap.Logger
	now          func() time.Time
}

func NewStatsHandler(statsService service.StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
		now:          time.Now,
	}
}

// MonthlyStats godoc
// @Summary      월간 리더보드
// @Description  최근 30일간 메시지 수 상위 사용자 (나간 사용자 제외)
// @Tags         stats
// @Produce      json
// @Success      200 {array} dto.LeaderboardEntry
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/monthly_stats [get]
func (h *StatsHandler) MonthlyStats(c *gin.Context) {
	entries, err := h.statsService.MonthlyLeaderboard(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// InactiveUsers godoc
// @Summary      비활성 사용자 (최근 N일)
// @Tags         stats
// @Produce      json
// @Param        days path int true "조회 기간 (일)"
// @Success      200 {array} string
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/inactive_users/{days} [get]
func (h *StatsHandler) InactiveUsers(c *gin.Context) {
	days, ok := h.parseDays(c)
	if !ok {
		return
	}

	users, err := h.statsService.InactiveUsersSince(c.Request.Context(), days)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// InactiveUsersByDate godoc
// @Summary      비활성 사용자 (기간 지정)
// @Description  start_date ~ end_date 사이에 메시지가 없는 사용자. end_date 기본값은 오늘
// @Tags         stats
// @Produce      json
// @Param        start_date query string true "시작일 (YYYY-MM-DD)"
// @Param        end_date query string false "종료일 (YYYY-MM-DD)"
// @Success      200 {array} string
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/inactive_users_by_date [get]
func (h *StatsHandler) InactiveUsersByDate(c *gin.Context) {
	start, end, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	users, err := h.statsService.InactiveUsersBetween(c.Request.Context(), start, end)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ChatTrend godoc
// @Summary      일별 메시지 추이
// @Tags         stats
// @Produce      json
// @Success      200 {array} dto.DailyCountResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/chat_trend [get]
func (h *StatsHandler) ChatTrend(c *gin.Context) {
	trend, err := h.statsService.ChatTrend(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trend)
}

// Users godoc
// @Summary      사용자 목록
// @Description  나간 사용자를 제외한 전체 사용자 (이름순)
// @Tags         stats
// @Produce      json
// @Success      200 {array} string
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/users [get]
func (h *StatsHandler) Users(c *gin.Context) {
	users, err := h.statsService.Users(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UserStats godoc
// @Summary      사용자별 통계
// @Description  최근 30일간 사용자의 메시지 수와 일별 활동. 사용자 이름에 '/'가 포함될 수 있습니다
// @Tags         stats
// @Produce      json
// @Param        username path string true "사용자 이름"
// @Success      200 {object} dto.UserStatsResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/user_stats/{username} [get]
func (h *StatsHandler) UserStats(c *gin.Context) {
	userName := strings.TrimPrefix(c.Param("username"), "/")
	if userName == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, msgMissingUserName)
		return
	}

	stats, err := h.statsService.UserStats(c.Request.Context(), userName)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ActiveUserStats godoc
// @Summary      활성 사용자 인구통계 (최근 N일)
// @Tags         stats
// @Produce      json
// @Param        days path int true "조회 기간 (일)"
// @Success      200 {object} dto.ActiveUserStatsResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/active_user_stats/{days} [get]
func (h *StatsHandler) ActiveUserStats(c *gin.Context) {
	days, ok := h.parseDays(c)
	if !ok {
		return
	}

	stats, err := h.statsService.ActiveUserStatsSince(c.Request.Context(), days)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ActiveUserStatsByDate godoc
// @Summary      활성 사용자 인구통계 (기간 지정)
// @Tags         stats
// @Produce      json
// @Param        start_date query string true "시작일 (YYYY-MM-DD)"
// @Param        end_date query string false "종료일 (YYYY-MM-DD)"
// @Success      200 {object} dto.ActiveUserStatsResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /api/active_user_stats_by_date [get]
func (h *StatsHandler) ActiveUserStatsByDate(c *gin.Context) {
	start, end, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	stats, err := h.statsService.ActiveUserStatsBetween(c.Request.Context(), start, end)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) parseDays(c *gin.Context) (int, bool) {
	days, err := strconv.Atoi(c.Param("days"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, msgInvalidDays)
		return 0, false
	}
	return days, true
}

// parseDateRange reads start_date and end_date as UTC midnights.
// A missing end_date means today.
func (h *StatsHandler) parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err := time.Parse(dateLayout, c.Query("start_date"))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, msgInvalidDate)
		return time.Time{}, time.Time{}, false
	}

	endValue := c.DefaultQuery("end_date", h.now().UTC().Format(dateLayout))
	end, err := time.Parse(dateLayout, endValue)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, msgInvalidDate)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
