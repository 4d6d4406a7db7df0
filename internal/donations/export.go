package donations

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ejoheza/backend/internal/listing"
	"github.com/ejoheza/backend/internal/models"
	"github.com/ejoheza/backend/pkg/response"
	"github.com/ejoheza/backend/pkg/storage"
)

const csvContentType = "text/csv"

// Exporter stores a generated report and signs a download link for it.
type Exporter interface {
	UploadExport(ctx context.Context, key, contentType string, body io.Reader) error
	PresignDownload(ctx context.Context, key string) (string, error)
}

// ExportResponse is returned when the report was uploaded to object storage.
type ExportResponse struct {
	Key         string `json:"key"`
	DownloadURL string `json:"download_url"`
	Rows        int    `json:"rows"`
}

var csvHeader = []string{"id", "donor_name", "email", "phone", "amount", "donation_type", "purpose", "anonymous", "status", "provider_order_id", "created_at"}

// WriteCSV writes donations as CSV with a header row.
// safeCell stops spreadsheet apps from evaluating donor-supplied text as a formula.
func safeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func WriteCSV(w io.Writer, rows []models.Donation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range rows {
		rec := []string{
			d.ID.String(),
			safeCell(d.DonorName),
			safeCell(d.Email),
			safeCell(d.Phone),
			strconv.FormatFloat(d.Amount, 'f', 2, 64),
			string(d.DonationType),
			safeCell(d.Purpose),
			strconv.FormatBool(d.IsAnonymous),
			string(d.Status),
			safeCell(d.ProviderOrderID),
			d.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export handles GET /admin/donations/export?search=&status=. With an exporter configured
// the file goes to S3 and a presigned link is returned; otherwise the CSV is streamed.
func (h *Handler) Export(c *gin.Context) {
	all, err := h.load(c.Request.Context())
	if err != nil {
		h.logger.Error("export donations", zap.Error(err))
		response.Internal(c, "failed to load donations")
		return
	}
	rows := filter(all, listing.ParseParams(c.Request.URL.Query()))

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		h.logger.Error("write donations csv", zap.Error(err))
		response.Internal(c, "failed to build export")
		return
	}

	now := time.Now().UTC()
	if h.exporter == nil {
		c.Header("Content-Disposition", `attachment; filename="donations-`+now.Format("20060102")+`.csv"`)
		c.Data(http.StatusOK, csvContentType, buf.Bytes())
		return
	}

	key := storage.ExportKey("donations", now)
	if err := h.exporter.UploadExport(c.Request.Context(), key, csvContentType, &buf); err != nil {
		h.logger.Error("upload donations export", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to store export")
		return
	}
	url, err := h.exporter.PresignDownload(c.Request.Context(), key)
	if err != nil {
		h.logger.Error("presign donations export", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to sign export link")
		return
	}
	h.logger.Info("donations exported", zap.String("key", key), zap.Int("rows", len(rows)))
	response.OK(c, ExportResponse{Key: key, DownloadURL: url, Rows: len(rows)})
}
