package accounts

type Account struct {
	DocID       string `json:"doc_id" bson:"_id,omitempty"`
	ID          int64  `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	Email       string `json:"email" bson:"email"`
	Mobile      string `json:"mobile" bson:"mobile"`
	Department  string `json:"department" bson:"department"`
	DateOfBirth string `json:"date_of_birth" bson:"date_of_birth"` // YYYY-MM-DD
}

func (a *Account) DocKey() string       { return a.DocID }
func (a *Account) SetDocKey(key string) { a.DocID = key }

func (a *Account) toDTO() AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Mobile:      a.Mobile,
		Department:  a.Department,
		DateOfBirth: a.DateOfBirth,
	}
}

// 初期データ（外部には保存しない）
func seedAccounts() []*Account {
	return []*Account{
		{
			ID:          1,
			Name:        "Rishaad",
			Email:       "rishaad@example.com",
			Mobile:      "9876543210",
			Department:  "Computer Science",
			DateOfBirth: "2000-01-01",
		},
		{
			ID:          2,
			Name:        "Admin User",
			Email:       "admin@example.com",
			Mobile:      "1234567890",
			Department:  "Admin Department",
			DateOfBirth: "1990-05-10",
		},
	}
}
