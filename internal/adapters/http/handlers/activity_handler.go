package handlers

import (
	"errors"

	"salescrm/internal/adapters/persistence/repositories"
	"salescrm/internal/core/domain"
	"salescrm/internal/core/services"
	"salescrm/internal/pkg/pagination"
	"salescrm/internal/pkg/response"
	"salescrm/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// ActivityHandler handles activity endpoints
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// CreateActivity creates a new activity
// @Summary Create activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateActivityInput true "Activity data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /activities [post]
func (h *ActivityHandler) CreateActivity(c *fiber.Ctx) error {
	var input services.CreateActivityInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	activity, err := h.activityService.CreateActivity(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrValidationFailed) {
			return response.BadRequest(c, "Invalid activity data")
		}
		return response.InternalServerError(c, "Failed to create activity")
	}

	return response.Created(c, "Activity created successfully", activity)
}

// ListActivities lists activities with filters and pagination
// @Summary List activities
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter by type"
// @Param status query string false "Filter by status"
// @Param customer query int false "Filter by customer"
// @Param opportunity query int false "Filter by opportunity"
// @Param assigned_to query int false "Filter by assignee"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.ActivityFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}
	if v := c.QueryInt("customer"); v > 0 {
		id := uint(v)
		filter.CustomerID = &id
	}
	if v := c.QueryInt("opportunity"); v > 0 {
		id := uint(v)
		filter.OpportunityID = &id
	}
	if v := c.QueryInt("assigned_to"); v > 0 {
		id := uint(v)
		filter.AssignedToID = &id
	}

	result, err := h.activityService.ListActivities(c.Context(), filter, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list activities")
	}

	return response.Success(c, "Activities retrieved successfully", result)
}

// ListUpcoming lists planned activities due from now on
// @Summary List upcoming activities
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max items"
// @Success 200 {object} response.Response
// @Router /activities/upcoming [get]
func (h *ActivityHandler) ListUpcoming(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	activities, err := h.activityService.ListUpcoming(c.Context(), limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list upcoming activities")
	}

	return response.Success(c, "Upcoming activities retrieved successfully", activities)
}

// ListOverdue lists open activities past their due date
// @Summary List overdue activities
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max items"
// @Success 200 {object} response.Response
// @Router /activities/overdue [get]
func (h *ActivityHandler) ListOverdue(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	activities, err := h.activityService.ListOverdue(c.Context(), limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list overdue activities")
	}

	return response.Success(c, "Overdue activities retrieved successfully", activities)
}

// GetActivity gets an activity by ID
// @Summary Get activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetActivity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid activity ID")
	}

	activity, err := h.activityService.GetActivityByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrActivityNotFound) {
			return response.NotFound(c, "Activity not found")
		}
		return response.InternalServerError(c, "Failed to get activity")
	}

	return response.Success(c, "Activity retrieved successfully", activity)
}

// UpdateActivity updates an activity
// @Summary Update activity
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Param body body services.UpdateActivityInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /activities/{id} [put]
func (h *ActivityHandler) UpdateActivity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid activity ID")
	}

	var input services.UpdateActivityInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	activity, err := h.activityService.UpdateActivity(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrActivityNotFound):
			return response.NotFound(c, "Activity not found")
		case errors.Is(err, domain.ErrValidationFailed):
			return response.BadRequest(c, "Invalid activity data")
		default:
			return response.InternalServerError(c, "Failed to update activity")
		}
	}

	return response.Success(c, "Activity updated successfully", activity)
}

// CompleteActivity marks an activity as completed
// @Summary Complete activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /activities/{id}/complete [post]
func (h *ActivityHandler) CompleteActivity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid activity ID")
	}

	activity, err := h.activityService.CompleteActivity(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrActivityNotFound) {
			return response.NotFound(c, "Activity not found")
		}
		return response.InternalServerError(c, "Failed to complete activity")
	}

	return response.Success(c, "Activity completed successfully", activity)
}

// DeleteActivity deletes an activity
// @Summary Delete activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /activities/{id} [delete]
func (h *ActivityHandler) DeleteActivity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid activity ID")
	}

	if err := h.activityService.DeleteActivity(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrActivityNotFound) {
			return response.NotFound(c, "Activity not found")
		}
		return response.InternalServerError(c, "Failed to delete activity")
	}

	return response.Success(c, "Activity deleted successfully", nil)
}
