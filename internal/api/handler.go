package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stockpulse/internal/domain/dto"
	"github.com/guttosm/stockpulse/internal/domain/models"
	"github.com/guttosm/stockpulse/internal/export"
	"github.com/guttosm/stockpulse/internal/middleware"
	"github.com/guttosm/stockpulse/internal/service"
)

// Handler provides HTTP handlers for quote, report and export endpoints.
//
// Responsibilities:
//   - Validate incoming query parameters and fill in default dates
//   - Run the request through the query service
//   - Map the query result kind to an HTTP status and response DTO
type Handler struct {
	svc        service.QueryService
	dataSource string
	now        func() time.Time
}

// NewHandler constructs a Handler. dataSource is echoed in every response
// ("yahoo" or "postgres") so clients can caption the figures.
func NewHandler(svc service.QueryService, dataSource string) *Handler {
	return &Handler{svc: svc, dataSource: dataSource, now: time.Now}
}

// GetQuote godoc
// @Summary      Single-day quote
// @Description  Returns the enriched bar of the first trading day on or after date (default yesterday)
// @Tags         quote
// @Produce      json
// @Param        symbol        query     string  true   "Ticker symbol" example(ZBAO)
// @Param        date          query     string  false  "Date in YYYY-MM-DD" example(2024-01-05)
// @Param        total_shares  query     int     false  "Manual total shares override"
// @Param        float_shares  query     int     false  "Manual float shares override"
// @Success      200           {object}  dto.QuoteResponse
// @Failure      400           {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404           {object}  dto.ErrorResponse  "No trading data"
// @Failure      502           {object}  dto.ErrorResponse  "Data source error"
// @Router       /api/v1/quote [get]
func (h *Handler) GetQuote(c *gin.Context) {
	req, ok := h.baseRequest(c, models.ModeSingleDay)
	if !ok {
		return
	}
	date, err := parseDate(c.Query("date"))
	if err != nil {
		middleware.AbortWithResponse(c, http.StatusBadRequest, invalid("invalid date format, expected YYYY-MM-DD", err))
		return
	}
	if date.IsZero() {
		date = service.DefaultDate(h.now())
	}
	req.Date = date

	res := h.svc.Query(c.Request.Context(), req)
	if res.Kind != models.ResultSuccess {
		writeFailure(c, res)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuoteResponse(res, date.Format(models.DateLayout), h.dataSource))
}

// GetReport godoc
// @Summary      Range report
// @Description  Returns enriched bars and the close series for [start, end] (default: the last 30 days)
// @Tags         report
// @Produce      json
// @Param        symbol        query     string  true   "Ticker symbol" example(ZBAO)
// @Param        start         query     string  false  "Start date in YYYY-MM-DD" example(2024-01-01)
// @Param        end           query     string  false  "End date in YYYY-MM-DD, inclusive" example(2024-01-31)
// @Param        total_shares  query     int     false  "Manual total shares override"
// @Param        float_shares  query     int     false  "Manual float shares override"
// @Success      200           {object}  dto.ReportResponse
// @Failure      400           {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404           {object}  dto.ErrorResponse  "No trading data"
// @Failure      502           {object}  dto.ErrorResponse  "Data source error"
// @Router       /api/v1/report [get]
func (h *Handler) GetReport(c *gin.Context) {
	req, res, ok := h.runReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewReportResponse(res,
		req.Start.Format(models.DateLayout), req.End.Format(models.DateLayout), h.dataSource))
}

// ExportReport godoc
// @Summary      Export range report
// @Description  Streams the range report bars as a CSV, Parquet or JSON attachment
// @Tags         report
// @Produce      text/csv
// @Produce      application/vnd.apache.parquet
// @Produce      json
// @Param        symbol        query     string  true   "Ticker symbol" example(ZBAO)
// @Param        start         query     string  false  "Start date in YYYY-MM-DD"
// @Param        end           query     string  false  "End date in YYYY-MM-DD, inclusive"
// @Param        format        query     string  false  "csv (default), parquet or json"
// @Param        total_shares  query     int     false  "Manual total shares override"
// @Param        float_shares  query     int     false  "Manual float shares override"
// @Success      200           {file}    file
// @Failure      400           {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404           {object}  dto.ErrorResponse  "No trading data"
// @Failure      502           {object}  dto.ErrorResponse  "Data source error"
// @Router       /api/v1/report/export [get]
func (h *Handler) ExportReport(c *gin.Context) {
	enc, err := export.NewEncoder(c.Query("format"))
	if err != nil {
		middleware.AbortWithResponse(c, http.StatusBadRequest, invalid("unsupported format", err))
		return
	}
	req, res, ok := h.runReport(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, res.Bars); err != nil {
		_ = c.Error(fmt.Errorf("encode %s export: %w", enc.Extension(), err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(req.Symbol, res.Bars, enc)))
	c.Data(http.StatusOK, enc.ContentType(), buf.Bytes())
}

// runReport parses a range request and runs it. ok is false once a failure
// response has been written.
func (h *Handler) runReport(c *gin.Context) (models.QueryRequest, models.QueryResult, bool) {
	req, ok := h.baseRequest(c, models.ModeRangeReport)
	if !ok {
		return req, models.QueryResult{}, false
	}
	start, err := parseDate(c.Query("start"))
	if err != nil {
		middleware.AbortWithResponse(c, http.StatusBadRequest, invalid("invalid start format, expected YYYY-MM-DD", err))
		return req, models.QueryResult{}, false
	}
	end, err := parseDate(c.Query("end"))
	if err != nil {
		middleware.AbortWithResponse(c, http.StatusBadRequest, invalid("invalid end format, expected YYYY-MM-DD", err))
		return req, models.QueryResult{}, false
	}
	req.Start, req.End = service.DefaultRange(h.now(), start, end)

	res := h.svc.Query(c.Request.Context(), req)
	if res.Kind != models.ResultSuccess {
		writeFailure(c, res)
		return req, res, false
	}
	return req, res, true
}

// baseRequest reads the parameters shared by every endpoint: symbol and the
// optional share count overrides.
func (h *Handler) baseRequest(c *gin.Context, mode models.QueryMode) (models.QueryRequest, bool) {
	req := models.QueryRequest{Mode: mode, Symbol: strings.ToUpper(strings.TrimSpace(c.Query("symbol")))}
	if req.Symbol == "" {
		middleware.AbortWithResponse(c, http.StatusBadRequest, invalid("symbol is required", nil))
		return req, false
	}
	var err error
	if req.ManualTotal, err = parseCount(c.Query("total_shares")); err != nil {
		middleware.AbortWithResponse(c, http.StatusBadRequest, invalid("invalid total_shares", err))
		return req, false
	}
	if req.ManualFloat, err = parseCount(c.Query("float_shares")); err != nil {
		middleware.AbortWithResponse(c, http.StatusBadRequest, invalid("invalid float_shares", err))
		return req, false
	}
	return req, true
}

func writeFailure(c *gin.Context, res models.QueryResult) {
	status := http.StatusBadGateway
	msg := "data source error"
	switch {
	case res.Kind == models.ResultEmpty:
		status, msg = http.StatusNotFound, "no trading data"
	case res.ErrorKind == models.ErrInvalidRequest:
		status, msg = http.StatusBadRequest, "invalid request"
	}
	resp := dto.NewErrorResponse(msg, nil)
	resp.ErrorDetails = res.Message
	resp.Kind = string(res.ErrorKind)
	middleware.AbortWithResponse(c, status, resp)
}

func invalid(msg string, err error) dto.ErrorResponse {
	resp := dto.NewErrorResponse(msg, err)
	resp.Kind = string(models.ErrInvalidRequest)
	return resp
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(models.DateLayout, s)
}

// parseCount accepts digits with optional thousands separators ("33,270,000").
// An empty value means no override.
func parseCount(s string) (*int64, error) {
	s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
