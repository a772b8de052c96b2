package request

// CreateUserRequest represents an employee account creation request
type CreateUserRequest struct {
	FirstName string  `json:"first_name" binding:"required,min=2,max=255"`
	LastName  string  `json:"last_name" binding:"required,min=2,max=255"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Role      string  `json:"role" binding:"required"`
}

// AssignRoleRequest represents a role assignment request
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required"`
}
