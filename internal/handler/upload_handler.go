package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/config"
	"github.com/skylarnam/KakaoChatParserV2/internal/dto"
	"github.com/skylarnam/KakaoChatParserV2/internal/response"
	"github.com/skylarnam/KakaoChatParserV2/internal/service"
)

const (
	msgNoFile          = "파일이 선택되지 않았습니다."
	msgCSVOnly         = "CSV 파일만 업로드 가능합니다."
	msgFileTooLarge    = "파일 크기가 너무 큽니다."
	msgProcessingError = "파일 처리 중 오류가 발생했습니다."
)

// multipartOverhead leaves room for boundaries and headers around the file part
const multipartOverhead = 1 << 20

type UploadHandler struct {
	importService service.ImportService
	cfg           config.UploadConfig
	logger        *zap.Logger
}

func NewUploadHandler(importService service.ImportService, cfg config.UploadConfig, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		importService: importService,
		cfg:           cfg,
		logger:        logger,
	}
}

// Upload godoc
// @Summary      채팅 CSV 업로드
// @Description  Date, User, Message 컬럼의 CSV로 기존 데이터를 모두 교체합니다
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "채팅 내보내기 CSV"
// @Success      200 {object} dto.ImportResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Router       /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.cfg.MaxSizeBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxSizeBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.SendError(c, http.StatusBadRequest, response.ErrCodeTooLarge, msgFileTooLarge)
			return
		}
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, msgNoFile)
		return
	}

	if fileHeader.Filename == "" {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, msgNoFile)
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), h.cfg.AllowedExtension) {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, msgCSVOnly)
		return
	}
	if h.cfg.MaxSizeBytes > 0 && fileHeader.Size > h.cfg.MaxSizeBytes {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeTooLarge, msgFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, msgProcessingError)
		return
	}
	defer file.Close()

	result, err := h.importService.Import(c.Request.Context(), filepath.Base(fileHeader.Filename), file)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{
		Success:  true,
		BatchID:  result.BatchID,
		Imported: result.Imported,
	})
}

func (h *UploadHandler) handleImportError(c *gin.Context, err error) {
	var appErr *response.AppError
	if errors.As(err, &appErr) && appErr.Code == response.ErrCodeTooLarge {
		logServiceError(h.logger, c, http.StatusBadRequest, err)
		response.SendError(c, http.StatusBadRequest, appErr.Code, msgFileTooLarge)
		return
	}

	code := response.ErrCodeInternal
	if appErr != nil {
		code = appErr.Code
	}
	logServiceError(h.logger, c, http.StatusInternalServerError, err)
	response.SendError(c, http.StatusInternalServerError, code, msgProcessingError)
}
