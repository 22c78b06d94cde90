package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skylarnam/KakaoChatParserV2/internal/config"
	"github.com/skylarnam/KakaoChatParserV2/internal/response"
	"github.com/skylarnam/KakaoChatParserV2/internal/service"
)

const sampleCSV = "Date,User,Message\n2024-06-01 10:00:00,A,hi\n"

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxSizeBytes:     1024,
		AllowedExtension: ".csv",
		InsertBatchSize:  100,
	}
}

func setupUploadRouter(svc service.ImportService, cfg config.UploadConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUploadHandler(svc, cfg, zap.NewNop())
	r := gin.New()
	r.POST("/upload", h.Upload)
	return r
}

// newUploadRequest builds a multipart request; an empty field skips the file part
func newUploadRequest(t *testing.T, field, fileName, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if field != "" {
		part, err := writer.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("note", "no file"))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandler_Upload(t *testing.T) {
	tests := []struct {
		name           string
		field          string
		fileName       string
		content        string
		maxSize        int64
		importFunc     func(ctx context.Context, fileName string, r io.Reader) (*service.ImportResult, error)
		expectedStatus int
		expectedCode   string
		expectedError  string
		expectImport   bool
		checkResponse  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:     "성공: CSV 업로드",
			field:    "file",
			fileName: "chat.csv",
			content:  sampleCSV,
			importFunc: func(ctx context.Context, fileName string, r io.Reader) (*service.ImportResult, error) {
				data, err := io.ReadAll(r)
				if err != nil {
					return nil, err
				}
				if fileName != "chat.csv" || string(data) != sampleCSV {
					return nil, fmt.Errorf("unexpected upload %q", fileName)
				}
				return &service.ImportResult{BatchID: "batch-1", FileName: fileName, Imported: 1}, nil
			},
			expectedStatus: http.StatusOK,
			expectImport:   true,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"success":true,"batch_id":"batch-1","imported":1}`, w.Body.String())
			},
		},
		{
			name:           "성공: 대문자 확장자",
			field:          "file",
			fileName:       "CHAT.CSV",
			content:        sampleCSV,
			expectedStatus: http.StatusOK,
			expectImport:   true,
		},
		{
			name:           "실패: 파일 없음",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   response.ErrCodeValidation,
			expectedError:  msgNoFile,
		},
		{
			name:           "실패: 다른 필드 이름",
			field:          "upload",
			fileName:       "chat.csv",
			content:        sampleCSV,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   response.ErrCodeValidation,
			expectedError:  msgNoFile,
		},
		{
			name:           "실패: CSV가 아닌 파일",
			field:          "file",
			fileName:       "chat.txt",
			content:        sampleCSV,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   response.ErrCodeValidation,
			expectedError:  msgCSVOnly,
		},
		{
			name:           "실패: 파일 크기 초과",
			field:          "file",
			fileName:       "chat.csv",
			content:        sampleCSV,
			maxSize:        10,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   response.ErrCodeTooLarge,
			expectedError:  msgFileTooLarge,
		},
		{
			name:     "실패: 파싱 오류",
			field:    "file",
			fileName: "chat.csv",
			content:  "bogus",
			importFunc: func(ctx context.Context, fileName string, r io.Reader) (*service.ImportResult, error) {
				return nil, response.NewAppError(response.ErrCodeImport, "missing column", "date")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   response.ErrCodeImport,
			expectedError:  msgProcessingError,
			expectImport:   true,
		},
		{
			name:     "실패: 서비스 크기 제한",
			field:    "file",
			fileName: "chat.csv",
			content:  sampleCSV,
			importFunc: func(ctx context.Context, fileName string, r io.Reader) (*service.ImportResult, error) {
				return nil, response.NewAppError(response.ErrCodeTooLarge, "upload exceeds limit", "")
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   response.ErrCodeTooLarge,
			expectedError:  msgFileTooLarge,
			expectImport:   true,
		},
		{
			name:     "실패: 데이터베이스 오류",
			field:    "file",
			fileName: "chat.csv",
			content:  sampleCSV,
			importFunc: func(ctx context.Context, fileName string, r io.Reader) (*service.ImportResult, error) {
				return nil, errors.New("database is locked")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   response.ErrCodeInternal,
			expectedError:  msgProcessingError,
			expectImport:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testUploadConfig()
			if tt.maxSize > 0 {
				cfg.MaxSizeBytes = tt.maxSize
			}
			svc := &MockImportService{ImportFunc: tt.importFunc}
			r := setupUploadRouter(svc, cfg)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, newUploadRequest(t, tt.field, tt.fileName, tt.content))

			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectImport {
				assert.Equal(t, 1, svc.calls)
			} else {
				assert.Zero(t, svc.calls)
			}

			if tt.expectedError != "" {
				body := decodeError(t, w)
				assert.Equal(t, tt.expectedError, body.Error)
				assert.Equal(t, tt.expectedCode, body.Code)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestUploadHandler_NotMultipart(t *testing.T) {
	svc := &MockImportService{}
	r := setupUploadRouter(svc, testUploadConfig())

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(sampleCSV))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgNoFile, decodeError(t, w).Error)
	assert.Zero(t, svc.calls)
}
