package books

// ===== Requests =====

// BookRequest is used for both create and full-replace update.
type BookRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title" binding:"required"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	ISBN   string `json:"isbn"`
	Domain string `json:"domain"`
}

// ===== Responses =====

type BookResponse struct {
	DocID  string `json:"doc_id"`
	BookID int64  `json:"book_id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	ISBN   string `json:"isbn"`
	Domain string `json:"domain"`
}
