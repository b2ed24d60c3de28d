package accounts

const DateLayout = "2006-01-02"

type AccountRequest struct {
	ID          int64  `json:"id" binding:"required"`
	Name        string `json:"name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Mobile      string `json:"mobile"`
	Department  string `json:"department"`
	DateOfBirth string `json:"date_of_birth"`
}

type AccountResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Department  string `json:"department"`
	DateOfBirth string `json:"date_of_birth"`
}
