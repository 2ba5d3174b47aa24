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

// LeadHandler handles lead endpoints
type LeadHandler struct {
	leadService *services.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *services.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// AssignLeadRequest represents a lead assignment request body
type AssignLeadRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// CreateLead creates a new lead
// @Summary Create lead
// @Description Create a new lead in NEW status
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateLeadInput true "Lead data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /leads [post]
func (h *LeadHandler) CreateLead(c *fiber.Ctx) error {
	var input services.CreateLeadInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	lead, err := h.leadService.CreateLead(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrValidationFailed) {
			return response.BadRequest(c, "Invalid lead data")
		}
		return response.InternalServerError(c, "Failed to create lead")
	}

	return response.Created(c, "Lead created successfully", lead)
}

// ListLeads lists leads with filters and pagination
// @Summary List leads
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param source query string false "Filter by source"
// @Param assigned_to query int false "Filter by assignee"
// @Param converted query bool false "Filter by conversion state"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /leads [get]
func (h *LeadHandler) ListLeads(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.LeadFilter{
		Status: c.Query("status"),
		Source: c.Query("source"),
	}
	if v := c.QueryInt("assigned_to"); v > 0 {
		id := uint(v)
		filter.AssignedToID = &id
	}
	if v := c.Query("converted"); v != "" {
		converted := v == "true"
		filter.Converted = &converted
	}

	result, err := h.leadService.ListLeads(c.Context(), filter, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list leads")
	}

	return response.Success(c, "Leads retrieved successfully", result)
}

// SearchLeads searches leads by name, company or email
// @Summary Search leads
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query"
// @Success 200 {object} response.Response
// @Router /leads/search [get]
func (h *LeadHandler) SearchLeads(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return response.BadRequest(c, "Search query is required")
	}

	leads, err := h.leadService.SearchLeads(c.Context(), query)
	if err != nil {
		return response.InternalServerError(c, "Failed to search leads")
	}

	return response.Success(c, "Leads retrieved successfully", leads)
}

// GetLead gets a lead by ID
// @Summary Get lead
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id} [get]
func (h *LeadHandler) GetLead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid lead ID")
	}

	lead, err := h.leadService.GetLeadByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			return response.NotFound(c, "Lead not found")
		}
		return response.InternalServerError(c, "Failed to get lead")
	}

	return response.Success(c, "Lead retrieved successfully", lead)
}

// UpdateLead updates a lead
// @Summary Update lead
// @Description Update lead fields; converted leads are immutable
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param body body services.UpdateLeadInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /leads/{id} [put]
func (h *LeadHandler) UpdateLead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid lead ID")
	}

	var input services.UpdateLeadInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	lead, err := h.leadService.UpdateLead(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadNotFound):
			return response.NotFound(c, "Lead not found")
		case errors.Is(err, domain.ErrAlreadyConverted):
			return response.Conflict(c, "Lead has already been converted")
		case errors.Is(err, domain.ErrValidationFailed):
			return response.BadRequest(c, "Invalid lead data")
		default:
			return response.InternalServerError(c, "Failed to update lead")
		}
	}

	return response.Success(c, "Lead updated successfully", lead)
}

// DeleteLead deletes a lead
// @Summary Delete lead
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id} [delete]
func (h *LeadHandler) DeleteLead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid lead ID")
	}

	if err := h.leadService.DeleteLead(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			return response.NotFound(c, "Lead not found")
		}
		return response.InternalServerError(c, "Failed to delete lead")
	}

	return response.Success(c, "Lead deleted successfully", nil)
}

// AssignLead assigns a lead to a user
// @Summary Assign lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param body body AssignLeadRequest true "Assignee"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id}/assign [post]
func (h *LeadHandler) AssignLead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid lead ID")
	}

	var req AssignLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	lead, err := h.leadService.AssignLead(c.Context(), uint(id), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadNotFound):
			return response.NotFound(c, "Lead not found")
		case errors.Is(err, services.ErrUserNotFoundSvc):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrAlreadyConverted):
			return response.Conflict(c, "Lead has already been converted")
		default:
			return response.InternalServerError(c, "Failed to assign lead")
		}
	}

	return response.Success(c, "Lead assigned successfully", lead)
}

// QualifyLead marks a lead as qualified
// @Summary Qualify lead
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id}/qualify [post]
func (h *LeadHandler) QualifyLead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid lead ID")
	}

	lead, err := h.leadService.QualifyLead(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadNotFound):
			return response.NotFound(c, "Lead not found")
		case errors.Is(err, domain.ErrAlreadyConverted):
			return response.Conflict(c, "Lead has already been converted")
		default:
			return response.InternalServerError(c, "Failed to qualify lead")
		}
	}

	return response.Success(c, "Lead qualified successfully", lead)
}

// ConvertLead converts a lead into a customer and opportunity
// @Summary Convert lead
// @Description Create a customer and opportunity from the lead in one transaction; a lead converts once
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param body body services.ConvertLeadInput true "Conversion data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /leads/{id}/convert [post]
func (h *LeadHandler) ConvertLead(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid lead ID")
	}

	var input services.ConvertLeadInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	lead, err := h.leadService.ConvertLead(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadNotFound):
			return response.NotFound(c, "Lead not found")
		case errors.Is(err, services.ErrUserNotFoundSvc):
			return response.NotFound(c, "Owner not found")
		case errors.Is(err, domain.ErrAlreadyConverted):
			return response.Conflict(c, "Lead has already been converted")
		case errors.Is(err, domain.ErrValidationFailed):
			return response.BadRequest(c, "Invalid conversion data")
		default:
			return response.InternalServerError(c, "Failed to convert lead")
		}
	}

	return response.Success(c, "Lead converted successfully", lead)
}
