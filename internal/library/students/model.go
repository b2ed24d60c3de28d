package students

type Student struct {
	ID          string `json:"id" bson:"_id,omitempty"`
	Name        string `json:"name" bson:"name"`
	Role        string `json:"role" bson:"role"`
	Username    string `json:"username" bson:"username"`
	Email       string `json:"email" bson:"email"`
	PhoneNumber string `json:"phone_number" bson:"phone_number"`
	Address     string `json:"address" bson:"address"`
}

func (s *Student) DocKey() string       { return s.ID }
func (s *Student) SetDocKey(key string) { s.ID = key }

func (s *Student) toDTO() StudentResponse {
	return StudentResponse{
		ID:          s.ID,
		Name:        s.Name,
		Role:        s.Role,
		Username:    s.Username,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		Address:     s.Address,
	}
}

func (in StudentRequest) toModel() *Student {
	return &Student{
		ID:          in.ID,
		Name:        in.Name,
		Role:        in.Role,
		Username:    in.Username,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
	}
}
