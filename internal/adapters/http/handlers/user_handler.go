package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lendsqr-admin/internal/core/domain"
	"lendsqr-admin/internal/core/services"
	"lendsqr-admin/internal/pkg/export"
	"lendsqr-admin/internal/pkg/pagination"
	"lendsqr-admin/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UserHandler serves the mirrored user directory
type UserHandler struct {
	directory *services.DirectoryService
	logger    *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(directory *services.DirectoryService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		directory: directory,
		logger:    logger,
	}
}

// ListUsers handles the paginated, filterable directory listing
// @Summary List users
// @Description Get one page of the user directory, filtered and sorted
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param organization query string false "Organization (exact)"
// @Param username query string false "Username contains (case-insensitive)"
// @Param email query string false "Email contains (case-insensitive)"
// @Param phoneNumber query string false "Phone number contains"
// @Param status query string false "Active, Inactive, Pending or Blacklisted"
// @Param date query string false "Date joined (YYYY-MM-DD)"
// @Param sort query string false "id or dateJoined" default(id)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params, err := pagination.GetParams(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	page, err := h.directory.GetUsers(c.UserContext(), domain.ListParams{
		Page:   params.Page,
		Limit:  params.Limit,
		Filter: filterFromQuery(c),
		Sort:   domain.SortKey(c.Query("sort")),
	})
	if err != nil {
		return h.fail(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", pagination.NewResponse(page.Data, params, page.Total))
}

// GetUser returns the full record for one id
// @Summary Get user by ID
// @Description Get a mirrored user record. Does not refresh the mirror.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))

	user, err := h.directory.GetUserByID(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, "Failed to get user")
	}
	if user == nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user,
	})
}

// Stats returns directory totals per status
// @Summary Directory stats
// @Description Total users and counts per status
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /users/stats [get]
func (h *UserHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.directory.Stats(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Failed to load stats")
	}

	return response.Success(c, "Stats retrieved successfully", stats)
}

// Export streams every match as an xlsx workbook
// @Summary Export users
// @Description Download the filtered directory as an Excel workbook
// @Tags Users
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param organization query string false "Organization (exact)"
// @Param username query string false "Username contains"
// @Param email query string false "Email contains"
// @Param phoneNumber query string false "Phone number contains"
// @Param status query string false "Status"
// @Param date query string false "Date joined (YYYY-MM-DD)"
// @Param sort query string false "id or dateJoined"
// @Success 200 {file} file
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /users/export [get]
func (h *UserHandler) Export(c *fiber.Ctx) error {
	users, err := h.directory.ListAll(c.UserContext(), filterFromQuery(c), domain.SortKey(c.Query("sort")))
	if err != nil {
		return h.fail(c, err, "Failed to export users")
	}

	body, err := export.UsersWorkbook(users)
	if err != nil {
		h.logger.Error("Export failed", zap.Error(err))
		return response.InternalServerError(c, "Failed to export users")
	}

	filename := fmt.Sprintf("users-%s.xlsx", time.Now().Format("20060102-150405"))
	return response.Attachment(c, filename, xlsxContentType, body)
}

// Refresh forces a refetch of the remote feed
// @Summary Refresh directory
// @Description Refetch the remote feed and replace the mirror
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /users/refresh [post]
func (h *UserHandler) Refresh(c *fiber.Ctx) error {
	if err := h.directory.Refresh(c.UserContext()); err != nil {
		return h.fail(c, err, "Failed to refresh directory")
	}

	h.logger.Info("Directory refreshed on demand")
	return response.Success(c, "Directory refreshed", fiber.Map{
		"refreshed_at": h.directory.RefreshedAt(),
	})
}

// fail maps directory errors to HTTP statuses
func (h *UserHandler) fail(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrFetchFailed):
		h.logger.Warn("Remote fetch failed", zap.Error(err))
		return response.BadGateway(c, "User source unavailable")
	default:
		h.logger.Error(fallback, zap.Error(err))
		return response.InternalServerError(c, fallback)
	}
}

func filterFromQuery(c *fiber.Ctx) domain.Filter {
	return domain.Filter{
		Organization: strings.TrimSpace(c.Query("organization")),
		Username:     strings.TrimSpace(c.Query("username")),
		Email:        strings.TrimSpace(c.Query("email")),
		PhoneNumber:  strings.TrimSpace(c.Query("phoneNumber")),
		Status:       domain.Status(strings.TrimSpace(c.Query("status"))),
		Date:         strings.TrimSpace(c.Query("date")),
	}
}
