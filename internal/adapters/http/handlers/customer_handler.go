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

// CustomerHandler handles customer and contact endpoints
type CustomerHandler struct {
	customerService *services.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// CreateCustomer creates a new customer
// @Summary Create customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateCustomerInput true "Customer data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *fiber.Ctx) error {
	var input services.CreateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	customer, err := h.customerService.CreateCustomer(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrValidationFailed) {
			return response.BadRequest(c, "Invalid customer data")
		}
		return response.InternalServerError(c, "Failed to create customer")
	}

	return response.Created(c, "Customer created successfully", customer)
}

// ListCustomers lists customers with filters and pagination
// @Summary List customers
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param industry query string false "Filter by industry"
// @Param account_manager query int false "Filter by account manager"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.CustomerFilter{
		Status:   c.Query("status"),
		Industry: c.Query("industry"),
	}
	if v := c.QueryInt("account_manager"); v > 0 {
		id := uint(v)
		filter.AccountManagerID = &id
	}

	result, err := h.customerService.ListCustomers(c.Context(), filter, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list customers")
	}

	return response.Success(c, "Customers retrieved successfully", result)
}

// SearchCustomers searches customers by company name or email
// @Summary Search customers
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query"
// @Success 200 {object} response.Response
// @Router /customers/search [get]
func (h *CustomerHandler) SearchCustomers(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return response.BadRequest(c, "Search query is required")
	}

	customers, err := h.customerService.SearchCustomers(c.Context(), query)
	if err != nil {
		return response.InternalServerError(c, "Failed to search customers")
	}

	return response.Success(c, "Customers retrieved successfully", customers)
}

// GetCustomer gets a customer by ID
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}

	customer, err := h.customerService.GetCustomerByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to get customer")
	}

	return response.Success(c, "Customer retrieved successfully", customer)
}

// UpdateCustomer updates a customer
// @Summary Update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param body body services.UpdateCustomerInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}

	var input services.UpdateCustomerInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	customer, err := h.customerService.UpdateCustomer(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCustomerNotFound):
			return response.NotFound(c, "Customer not found")
		case errors.Is(err, domain.ErrValidationFailed):
			return response.BadRequest(c, "Invalid customer data")
		default:
			return response.InternalServerError(c, "Failed to update customer")
		}
	}

	return response.Success(c, "Customer updated successfully", customer)
}

// DeleteCustomer deletes a customer and its contacts
// @Summary Delete customer
// @Description Delete a customer together with its contacts; opportunities and activities are kept
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}

	if err := h.customerService.DeleteCustomer(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to delete customer")
	}

	return response.Success(c, "Customer deleted successfully", nil)
}

// ListContacts lists contacts of a customer
// @Summary List contacts
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/contacts [get]
func (h *CustomerHandler) ListContacts(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}

	contacts, err := h.customerService.ListContacts(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to list contacts")
	}

	return response.Success(c, "Contacts retrieved successfully", contacts)
}

// AddContact adds a contact to a customer
// @Summary Add contact
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param body body services.ContactInput true "Contact data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/contacts [post]
func (h *CustomerHandler) AddContact(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}

	var input services.ContactInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	contact, err := h.customerService.AddContact(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			return response.NotFound(c, "Customer not found")
		}
		return response.InternalServerError(c, "Failed to add contact")
	}

	return response.Created(c, "Contact added successfully", contact)
}

// UpdateContact updates a contact of a customer
// @Summary Update contact
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param contactId path int true "Contact ID"
// @Param body body services.ContactInput true "Contact data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/contacts/{contactId} [put]
func (h *CustomerHandler) UpdateContact(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}
	contactID, err := c.ParamsInt("contactId")
	if err != nil || contactID < 1 {
		return response.BadRequest(c, "Invalid contact ID")
	}

	var input services.ContactInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	contact, err := h.customerService.UpdateContact(c.Context(), uint(id), uint(contactID), &input)
	if err != nil {
		if errors.Is(err, services.ErrContactNotFound) {
			return response.NotFound(c, "Contact not found")
		}
		return response.InternalServerError(c, "Failed to update contact")
	}

	return response.Success(c, "Contact updated successfully", contact)
}

// RemoveContact removes a contact from a customer
// @Summary Remove contact
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param contactId path int true "Contact ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /customers/{id}/contacts/{contactId} [delete]
func (h *CustomerHandler) RemoveContact(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid customer ID")
	}
	contactID, err := c.ParamsInt("contactId")
	if err != nil || contactID < 1 {
		return response.BadRequest(c, "Invalid contact ID")
	}

	if err := h.customerService.RemoveContact(c.Context(), uint(id), uint(contactID)); err != nil {
		if errors.Is(err, services.ErrContactNotFound) {
			return response.NotFound(c, "Contact not found")
		}
		return response.InternalServerError(c, "Failed to remove contact")
	}

	return response.Success(c, "Contact removed successfully", nil)
}
