package imports

import (
	"errors"
	"io"
	"strconv"

	"asset-importer/core/ingest"
	"asset-importer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	errEmptyPayload = errors.New("empty payload")
	errTooLarge     = errors.New("payload too large")
)

// Handler handles HTTP requests for imports.
type Handler struct {
	service   *Service
	maxUpload int64
}

// NewHandler creates a new HTTP handler. maxUpload bounds payload size in
// bytes; zero disables the check.
func NewHandler(service *Service, maxUpload int64) *Handler {
	// Force import for Swagger
	var _ = ingest.Result{}
	return &Handler{service: service, maxUpload: maxUpload}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/imports")
	group.Post("/spreadsheet", h.HandleSpreadsheet)
	group.Post("/scan", h.HandleScan)
	group.Post("/platform", h.HandlePlatform)
	group.Post("/platform/sync", h.HandlePlatformSync)
	group.Post("/policy/reload", h.HandlePolicyReload)
	group.Get("/archive", h.HandleArchiveList)
}

// HandleSpreadsheet imports a vulnerability spreadsheet.
// @Summary Import Spreadsheet
// @Description Imports an .xlsx (or CSV) vulnerability export. The payload is a multipart "file" field or the raw request body.
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Spreadsheet file"
// @Param dry_run query boolean false "Process and roll back"
// @Success 200 {object} ingest.Result "Import Result"
// @Failure 400 {object} ingest.Result "Unreadable payload"
// @Failure 413 {object} map[string]string "Payload Too Large"
// @Failure 500 {object} ingest.Result "Import Failed"
// @Router /imports/spreadsheet [post]
func (h *Handler) HandleSpreadsheet(c *fiber.Ctx) error {
	return h.handleImport(c, ingest.SourceSpreadsheet)
}

// HandleScan imports a port scan XML report.
// @Summary Import Scan Report
// @Description Imports an nmap or masscan XML report. Only open ports are recorded.
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file false "Scan XML file"
// @Param dry_run query boolean false "Process and roll back"
// @Success 200 {object} ingest.Result "Import Result"
// @Failure 400 {object} ingest.Result "Unreadable payload"
// @Failure 413 {object} map[string]string "Payload Too Large"
// @Failure 500 {object} ingest.Result "Import Failed"
// @Router /imports/scan [post]
func (h *Handler) HandleScan(c *fiber.Ctx) error {
	return h.handleImport(c, ingest.SourceScan)
}

// HandlePlatform imports one exported platform API page.
// @Summary Import Platform Page
// @Description Imports a JSON page returned by the security platform vulnerability API.
// @Tags imports
// @Accept json
// @Produce json
// @Param dry_run query boolean false "Process and roll back"
// @Success 200 {object} ingest.Result "Import Result"
// @Failure 400 {object} ingest.Result "Unreadable payload"
// @Failure 413 {object} map[string]string "Payload Too Large"
// @Failure 500 {object} ingest.Result "Import Failed"
// @Router /imports/platform [post]
func (h *Handler) HandlePlatform(c *fiber.Ctx) error {
	return h.handleImport(c, ingest.SourcePlatform)
}

// HandlePlatformSync fetches all pages from the platform API and imports them.
// @Summary Sync From Platform
// @Description Pulls every vulnerability page from the configured platform API and imports them as one run.
// @Tags imports
// @Produce json
// @Param dry_run query boolean false "Process and roll back"
// @Success 200 {object} ingest.Result "Import Result"
// @Failure 502 {object} map[string]string "Platform API Error"
// @Failure 503 {object} map[string]string "Platform Not Configured"
// @Failure 500 {object} ingest.Result "Import Failed"
// @Router /imports/platform/sync [post]
func (h *Handler) HandlePlatformSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	opts := ingest.Options{DryRun: c.QueryBool("dry_run")}

	res, err := h.service.Sync(c.UserContext(), opts)
	switch {
	case errors.Is(err, ErrPlatformDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrFetchFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": ErrFetchFailed.Error()})
	}
	return h.respond(c, l, res, err)
}

// HandlePolicyReload invalidates the cached import policy.
// @Summary Reload Import Policy
// @Description Drops the cached import policy and loads it again from configuration.
// @Tags imports
// @Produce json
// @Success 200 {object} ingest.Policy "Current Policy"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports/policy/reload [post]
func (h *Handler) HandlePolicyReload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	p, err := h.service.ReloadPolicy(c.UserContext())
	if err != nil {
		l.Error("Policy reload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "import policy is unavailable"})
	}
	l.Info("Import policy reloaded")
	return c.JSON(p)
}

// HandleArchiveList lists archived raw payloads.
// @Summary List Archived Payloads
// @Description Lists raw import files kept in object storage, newest first.
// @Tags imports
// @Produce json
// @Param source query string false "spreadsheet, scan or platform"
// @Success 200 {array} storage.ArchivedObject "Archived Objects"
// @Failure 400 {object} map[string]string "Unknown Source"
// @Failure 503 {object} map[string]string "Archive Not Configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /imports/archive [get]
func (h *Handler) HandleArchiveList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	objs, err := h.service.Archived(c.UserContext(), c.Query("source"))
	switch {
	case err == nil:
		return c.JSON(objs)
	case errors.Is(err, ErrUnknownSource):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrArchiveDisabled):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Archive listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list archive"})
	}
}

func (h *Handler) handleImport(c *fiber.Ctx, source string) error {
	l := logger.WithRayID(h.service.logger, c).With(zap.String("source", source))

	name, raw, err := h.readPayload(c)
	switch {
	case errors.Is(err, errTooLarge):
		l.Warn("Upload rejected", zap.Error(err))
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "payload exceeds " + strconv.FormatInt(h.maxUpload, 10) + " bytes",
		})
	case errors.Is(err, errEmptyPayload):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "no file uploaded"})
	case err != nil:
		l.Error("Failed to read upload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to read upload"})
	}

	l.Info("Import requested", zap.String("file", name), zap.Int("bytes", len(raw)))
	res, err := h.service.Import(c.UserContext(), source, name, raw, ingest.Options{DryRun: c.QueryBool("dry_run")})
	return h.respond(c, l, res, err)
}

func (h *Handler) respond(c *fiber.Ctx, l *zap.Logger, res *ingest.Result, err error) error {
	switch {
	case err == nil:
		return c.JSON(res)
	case ingest.IsFormatError(err) && res != nil:
		return c.Status(fiber.StatusBadRequest).JSON(res)
	case errors.Is(err, ingest.ErrRunFailed) && res != nil:
		// res.Error is the user-facing message; the cause stays in the logs.
		return c.Status(fiber.StatusInternalServerError).JSON(res)
	default:
		l.Error("Import failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "import failed"})
	}
}

// readPayload returns the multipart "file" field, or else the raw body.
func (h *Handler) readPayload(c *fiber.Ctx) (string, []byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		if h.maxUpload > 0 && fh.Size > h.maxUpload {
			return "", nil, errTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return "", nil, err
		}
		if len(data) == 0 {
			return "", nil, errEmptyPayload
		}
		return fh.Filename, data, nil
	}

	body := c.Body()
	if len(body) == 0 {
		return "", nil, errEmptyPayload
	}
	if h.maxUpload > 0 && int64(len(body)) > h.maxUpload {
		return "", nil, errTooLarge
	}
	// The body buffer is reused by fiber after the handler returns.
	data := make([]byte, len(body))
	copy(data, body)
	return c.Get("X-Filename"), data, nil
}
