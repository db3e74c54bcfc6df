package domain

// User is an account as listed by the admin endpoint.
type User struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role,omitempty"`
	CreateTime string `json:"createTime,omitempty"`
}

// AdminUserPage is the normalized page shape of the admin user list.
type AdminUserPage struct {
	Records []User `json:"records"`
	Current int    `json:"current"`
	Pages   int    `json:"pages"`
	Total   int    `json:"total"`
}

// LoginRequest is the body of POST /user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /user/register.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role,omitempty"`
}
