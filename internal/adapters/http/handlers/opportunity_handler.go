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

// OpportunityHandler handles pipeline endpoints
type OpportunityHandler struct {
	oppService *services.OpportunityService
}

// NewOpportunityHandler creates a new opportunity handler
func NewOpportunityHandler(oppService *services.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{oppService: oppService}
}

// CloseRequest represents a close-opportunity request body
type CloseRequest struct {
	Won bool `json:"won"`
}

// CreateOpportunity creates a new opportunity
// @Summary Create opportunity
// @Description Open a new opportunity at the PROSPECTING stage
// @Tags Opportunities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateOpportunityInput true "Opportunity data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /opportunities [post]
func (h *OpportunityHandler) CreateOpportunity(c *fiber.Ctx) error {
	var input services.CreateOpportunityInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	opp, err := h.oppService.CreateOpportunity(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		case errors.Is(err, services.ErrInvalidValue):
			return response.BadRequest(c, "Value must not be negative")
		case errors.Is(err, domain.ErrValidationFailed):
			return response.BadRequest(c, "Invalid opportunity data")
		default:
			return response.InternalServerError(c, "Failed to create opportunity")
		}
	}

	return response.Created(c, "Opportunity created successfully", opp.ToResponse())
}

// ListOpportunities lists opportunities with filters and pagination
// @Summary List opportunities
// @Tags Opportunities
// @Produce json
// @Security BearerAuth
// @Param stage query string false "Filter by stage"
// @Param status query string false "Filter by status"
// @Param owner query int false "Filter by owner"
// @Param customer query int false "Filter by customer"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /opportunities [get]
func (h *OpportunityHandler) ListOpportunities(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.OpportunityFilter{
		Stage:  c.Query("stage"),
		Status: c.Query("status"),
	}
	if v := c.QueryInt("owner"); v > 0 {
		id := uint(v)
		filter.OwnerID = &id
	}
	if v := c.QueryInt("customer"); v > 0 {
		id := uint(v)
		filter.CustomerID = &id
	}

	result, err := h.oppService.ListOpportunities(c.Context(), filter, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list opportunities")
	}

	return response.Success(c, "Opportunities retrieved successfully", result)
}

// ListOverdue lists open opportunities past their expected close date
// @Summary List overdue opportunities
// @Tags Opportunities
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /opportunities/overdue [get]
func (h *OpportunityHandler) ListOverdue(c *fiber.Ctx) error {
	opps, err := h.oppService.ListOverdue(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list overdue opportunities")
	}

	return response.Success(c, "Overdue opportunities retrieved successfully", opps)
}

// GetOpportunity gets an opportunity by ID
// @Summary Get opportunity
// @Tags Opportunities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /opportunities/{id} [get]
func (h *OpportunityHandler) GetOpportunity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid opportunity ID")
	}

	opp, err := h.oppService.GetOpportunityByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrOpportunityNotFound) {
			return response.NotFound(c, "Opportunity not found")
		}
		return response.InternalServerError(c, "Failed to get opportunity")
	}

	return response.Success(c, "Opportunity retrieved successfully", opp.ToResponse())
}

// UpdateOpportunity updates an opportunity
// @Summary Update opportunity
// @Description Update fields of an open opportunity; closed records are immutable
// @Tags Opportunities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param body body services.UpdateOpportunityInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /opportunities/{id} [put]
func (h *OpportunityHandler) UpdateOpportunity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid opportunity ID")
	}

	var input services.UpdateOpportunityInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	opp, err := h.oppService.UpdateOpportunity(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			return response.NotFound(c, "Opportunity not found")
		case errors.Is(err, services.ErrOpportunityClosed):
			return response.Conflict(c, "Opportunity is already closed")
		case errors.Is(err, services.ErrInvalidProbability):
			return response.BadRequest(c, "Probability must be between 0 and 100")
		case errors.Is(err, services.ErrInvalidValue):
			return response.BadRequest(c, "Value must not be negative")
		case errors.Is(err, domain.ErrValidationFailed):
			return response.BadRequest(c, "Invalid opportunity data")
		default:
			return response.InternalServerError(c, "Failed to update opportunity")
		}
	}

	return response.Success(c, "Opportunity updated successfully", opp.ToResponse())
}

// DeleteOpportunity deletes an opportunity
// @Summary Delete opportunity
// @Tags Opportunities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /opportunities/{id} [delete]
func (h *OpportunityHandler) DeleteOpportunity(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid opportunity ID")
	}

	if err := h.oppService.DeleteOpportunity(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrOpportunityNotFound) {
			return response.NotFound(c, "Opportunity not found")
		}
		return response.InternalServerError(c, "Failed to delete opportunity")
	}

	return response.Success(c, "Opportunity deleted successfully", nil)
}

// AdvanceStage moves an opportunity one stage forward
// @Summary Advance pipeline stage
// @Description Move the opportunity to the next stage; probability is set from the stage table
// @Tags Opportunities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /opportunities/{id}/advance [post]
func (h *OpportunityHandler) AdvanceStage(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid opportunity ID")
	}

	opp, err := h.oppService.AdvanceStage(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			return response.NotFound(c, "Opportunity not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Opportunity cannot advance from its current stage")
		default:
			return response.InternalServerError(c, "Failed to advance stage")
		}
	}

	return response.Success(c, "Stage advanced successfully", opp.ToResponse())
}

// Close closes an opportunity as won or lost
// @Summary Close opportunity
// @Description Close the opportunity from any open stage as won or lost
// @Tags Opportunities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param body body CloseRequest true "Outcome"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /opportunities/{id}/close [post]
func (h *OpportunityHandler) Close(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid opportunity ID")
	}

	var req CloseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	opp, err := h.oppService.Close(c.Context(), uint(id), req.Won)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			return response.NotFound(c, "Opportunity not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Conflict(c, "Opportunity is already closed")
		default:
			return response.InternalServerError(c, "Failed to close opportunity")
		}
	}

	return response.Success(c, "Opportunity closed successfully", opp.ToResponse())
}

// AddLineItem adds a product line item
// @Summary Add line item
// @Tags Opportunities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param body body services.LineItemInput true "Line item data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /opportunities/{id}/products [post]
func (h *OpportunityHandler) AddLineItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid opportunity ID")
	}

	var input services.LineItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	item, err := h.oppService.AddLineItem(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			return response.NotFound(c, "Opportunity not found")
		case errors.Is(err, services.ErrProductNotFound):
			return response.NotFound(c, "Product not found")
		case errors.Is(err, services.ErrOpportunityClosed):
			return response.Conflict(c, "Opportunity is already closed")
		case errors.Is(err, domain.ErrValidationFailed):
			return response.BadRequest(c, "Invalid line item data")
		default:
			return response.InternalServerError(c, "Failed to add line item")
		}
	}

	return response.Created(c, "Line item added successfully", item.ToResponse())
}

// UpdateLineItem updates a line item
// @Summary Update line item
// @Tags Opportunities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param itemId path int true "Line item ID"
// @Param body body services.LineItemInput true "Line item data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /opportunities/{id}/products/{itemId} [put]
func (h *OpportunityHandler) UpdateLineItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid opportunity ID")
	}
	itemID, err := c.ParamsInt("itemId")
	if err != nil || itemID < 1 {
		return response.BadRequest(c, "Invalid line item ID")
	}

	var input services.LineItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	item, err := h.oppService.UpdateLineItem(c.Context(), uint(id), uint(itemID), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			return response.NotFound(c, "Opportunity not found")
		case errors.Is(err, services.ErrLineItemNotFound):
			return response.NotFound(c, "Line item not found")
		case errors.Is(err, services.ErrOpportunityClosed):
			return response.Conflict(c, "Opportunity is already closed")
		case errors.Is(err, domain.ErrValidationFailed):
			return response.BadRequest(c, "Invalid line item data")
		default:
			return response.InternalServerError(c, "Failed to update line item")
		}
	}

	return response.Success(c, "Line item updated successfully", item.ToResponse())
}

// RemoveLineItem removes a line item
// @Summary Remove line item
// @Tags Opportunities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param itemId path int true "Line item ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /opportunities/{id}/products/{itemId} [delete]
func (h *OpportunityHandler) RemoveLineItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid opportunity ID")
	}
	itemID, err := c.ParamsInt("itemId")
	if err != nil || itemID < 1 {
		return response.BadRequest(c, "Invalid line item ID")
	}

	if err := h.oppService.RemoveLineItem(c.Context(), uint(id), uint(itemID)); err != nil {
		switch {
		case errors.Is(err, services.ErrOpportunityNotFound):
			return response.NotFound(c, "Opportunity not found")
		case errors.Is(err, services.ErrLineItemNotFound):
			return response.NotFound(c, "Line item not found")
		case errors.Is(err, services.ErrOpportunityClosed):
			return response.Conflict(c, "Opportunity is already closed")
		default:
			return response.InternalServerError(c, "Failed to remove line item")
		}
	}

	return response.Success(c, "Line item removed successfully", nil)
}
