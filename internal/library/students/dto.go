package students

// ===== Requests =====

type StudentRequest struct {
	ID          string `json:"id"` // 省略時はストアが採番
	Name        string `json:"name"`
	Role        string `json:"role"`
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// ===== Responses =====

type StudentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}
