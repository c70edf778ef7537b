package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	tokendomain "github.com/smallbiznis/teamgate/internal/token/domain"
	userdomain "github.com/smallbiznis/teamgate/internal/user/domain"
	"github.com/smallbiznis/teamgate/pkg/db/pagination"
)

type CreateEmployeeRequest struct {
	Email      string   `json:"email"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	EmployeeID string   `json:"employee_id"`
	Department string   `json:"department"`
	Position   string   `json:"position"`
	HireDate   string   `json:"hire_date"`
	Phone      string   `json:"phone"`
	Salary     *float64 `json:"salary"`
	ManagerID  *int64   `json:"manager_id"`
	Address    string   `json:"address"`
	Emergency  string   `json:"emergency_contact"`
}

// CreateEmployee does not write an employee row. It issues an
// employee-flavored invite; the record materializes when the hire accepts.
func (s *Server) CreateEmployee(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if strings.TrimSpace(req.EmployeeID) == "" {
		AbortWithError(c, newValidationError("employee_id", "required", "employee_id is required"))
		return
	}
	if strings.TrimSpace(req.Department) == "" {
		AbortWithError(c, newValidationError("department", "required", "department is required"))
		return
	}
	if hireDate := strings.TrimSpace(req.HireDate); hireDate != "" {
		if _, err := time.Parse("2006-01-02", hireDate); err != nil {
			AbortWithError(c, newValidationError("hire_date", "format", "hire_date must be YYYY-MM-DD"))
			return
		}
	}

	issued, err := s.issueInvite(c, InviteRequest{
		Email:     req.Email,
		Role:      string(userdomain.RoleEmployee),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, &tokendomain.EmployeeProvisioning{
		EmployeeID:       strings.TrimSpace(req.EmployeeID),
		Department:       strings.TrimSpace(req.Department),
		Position:         strings.TrimSpace(req.Position),
		HireDate:         strings.TrimSpace(req.HireDate),
		Phone:            strings.TrimSpace(req.Phone),
		Salary:           req.Salary,
		ManagerID:        req.ManagerID,
		Address:          strings.TrimSpace(req.Address),
		EmergencyContact: strings.TrimSpace(req.Emergency),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invitation": issued})
}

func (s *Server) ListEmployees(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	employees, info, err := s.employees.List(c.Request.Context(), orgID, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": employees,
		"page_info": info,
	})
}

func (s *Server) ListDepartments(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	departments, err := s.deptsvc.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"departments": departments})
}
