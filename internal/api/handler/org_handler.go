package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// DepartmentHandler handles HTTP requests for department management.
type DepartmentHandler struct {
	service ports.DepartmentService
}

func NewDepartmentHandler(service ports.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{service: service}
}

type createDepartmentRequest struct {
	Name       string  `json:"name" validate:"required"`
	HeadUserID string  `json:"head_user_id" validate:"required"`
	Budget     float64 `json:"budget" validate:"min=0"`
}

type updateDepartmentRequest struct {
	Name       *string  `json:"name"`
	HeadUserID *string  `json:"head_user_id"`
	Budget     *float64 `json:"budget"`
}

// Create handles POST /v1/departments.
//
// @Summary      Create a department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDepartmentRequest  true  "Department details"
// @Success      201   {object}  domain.Department
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/departments [post]
func (h *DepartmentHandler) Create(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createDepartmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dept, err := h.service.Create(c.Request().Context(), session, ports.CreateDepartmentInput{
		Name:       req.Name,
		HeadUserID: req.HeadUserID,
		Budget:     req.Budget,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dept)
}

// Get handles GET /v1/departments/:id.
func (h *DepartmentHandler) Get(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	dept, err := h.service.Get(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dept)
}

// List handles GET /v1/departments.
func (h *DepartmentHandler) List(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	depts, err := h.service.List(c.Request().Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, depts)
}

// Update handles PATCH /v1/departments/:id.
func (h *DepartmentHandler) Update(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updateDepartmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	dept, err := h.service.Update(c.Request().Context(), session, c.Param("id"), ports.UpdateDepartmentInput{
		Name:       req.Name,
		HeadUserID: req.HeadUserID,
		Budget:     req.Budget,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dept)
}

// Delete handles DELETE /v1/departments/:id.
//
// @Summary      Delete a department
// @Tags         departments
// @Security     BearerAuth
// @Param        id  path  string  true  "Department id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/departments/{id} [delete]
func (h *DepartmentHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), session, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ClientHandler handles HTTP requests for client account management.
type ClientHandler struct {
	service ports.ClientService
}

func NewClientHandler(service ports.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

type contactInfoRequest struct {
	Company string `json:"company"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
}

type createClientRequest struct {
	Name    string             `json:"name" validate:"required"`
	Contact contactInfoRequest `json:"contact"`
	Status  string             `json:"status" validate:"omitempty,oneof=active inactive pending"`
}

type updateClientRequest struct {
	Name    *string             `json:"name"`
	Contact *contactInfoRequest `json:"contact"`
	Status  *string             `json:"status"`
}

// Create handles POST /v1/clients.
func (h *ClientHandler) Create(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	client, err := h.service.Create(c.Request().Context(), session, ports.CreateClientInput{
		Name: req.Name,
		Contact: domain.ContactInfo{
			Company: req.Contact.Company,
			Email:   req.Contact.Email,
			Phone:   req.Contact.Phone,
		},
		Status: domain.ClientStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// Get handles GET /v1/clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	client, err := h.service.Get(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// List handles GET /v1/clients.
func (h *ClientHandler) List(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	clients, err := h.service.List(c.Request().Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clients)
}

// Update handles PATCH /v1/clients/:id.
func (h *ClientHandler) Update(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in := ports.UpdateClientInput{Name: req.Name}
	if req.Contact != nil {
		in.Contact = &domain.ContactInfo{
			Company: req.Contact.Company,
			Email:   req.Contact.Email,
			Phone:   req.Contact.Phone,
		}
	}
	if req.Status != nil {
		status := domain.ClientStatus(*req.Status)
		in.Status = &status
	}
	client, err := h.service.Update(c.Request().Context(), session, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// Delete handles DELETE /v1/clients/:id. The cascade query parameter must be
// set to delete a client that still has projects.
//
// @Summary      Delete a client
// @Tags         clients
// @Security     BearerAuth
// @Param        id       path   string  true   "Client id"
// @Param        cascade  query  bool    false  "Also delete the client's projects"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/clients/{id} [delete]
func (h *ClientHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	cascade := c.QueryParam("cascade") == "true"
	if err := h.service.Delete(c.Request().Context(), session, c.Param("id"), cascade); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ProjectHandler handles HTTP requests for project management.
type ProjectHandler struct {
	service ports.ProjectService
	reports ports.ReportService
}

func NewProjectHandler(service ports.ProjectService, reports ports.ReportService) *ProjectHandler {
	return &ProjectHandler{service: service, reports: reports}
}

type createProjectRequest struct {
	Name          string    `json:"name" validate:"required"`
	DepartmentID  string    `json:"department_id" validate:"required"`
	ClientID      string    `json:"client_id"`
	TeamMemberIDs []string  `json:"team_member_ids"`
	DueDate       time.Time `json:"due_date"`
}

type updateProjectRequest struct {
	Name          *string    `json:"name"`
	Status        *string    `json:"status"`
	ClientID      *string    `json:"client_id"`
	TeamMemberIDs *[]string  `json:"team_member_ids"`
	DueDate       *time.Time `json:"due_date"`
}

// Create handles POST /v1/projects.
func (h *ProjectHandler) Create(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	project, err := h.service.Create(c.Request().Context(), session, ports.CreateProjectInput{
		Name:          req.Name,
		DepartmentID:  req.DepartmentID,
		ClientID:      req.ClientID,
		TeamMemberIDs: req.TeamMemberIDs,
		DueDate:       req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, project)
}

// Get handles GET /v1/projects/:id.
func (h *ProjectHandler) Get(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	project, err := h.service.Get(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// List handles GET /v1/projects.
func (h *ProjectHandler) List(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	projects, err := h.service.List(c.Request().Context(), session, ports.ProjectFilter{
		DepartmentID: c.QueryParam("department_id"),
		ClientID:     c.QueryParam("client_id"),
		Status:       domain.ProjectStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// Update handles PATCH /v1/projects/:id.
func (h *ProjectHandler) Update(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in := ports.UpdateProjectInput{
		Name:          req.Name,
		ClientID:      req.ClientID,
		TeamMemberIDs: req.TeamMemberIDs,
		DueDate:       req.DueDate,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		in.Status = &status
	}
	project, err := h.service.Update(c.Request().Context(), session, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, project)
}

// Delete handles DELETE /v1/projects/:id.
func (h *ProjectHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), session, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Progress handles GET /v1/projects/:id/progress. Completion is derived from
// the project's tasks at request time; there is no stored figure to drift.
//
// @Summary      Project progress
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Project id"
// @Success      200  {object}  ports.ProjectProgress
// @Failure      404  {object}  map[string]string
// @Router       /v1/projects/{id}/progress [get]
func (h *ProjectHandler) Progress(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	progress, err := h.reports.Progress(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progress)
}
