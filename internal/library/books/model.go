package books

// ストアに保存するドキュメント
type Book struct {
	DocID  string `json:"doc_id" bson:"_id,omitempty"`
	BookID int64  `json:"book_id" bson:"book_id"`
	UserID string `json:"user_id" bson:"user_id"`
	Title  string `json:"title" bson:"title"`
	Author string `json:"author" bson:"author"`
	Genre  string `json:"genre" bson:"genre"`
	ISBN   string `json:"isbn" bson:"isbn"`
	Domain string `json:"domain" bson:"domain"`
}

func (b *Book) DocKey() string       { return b.DocID }
func (b *Book) SetDocKey(key string) { b.DocID = key }

func (b *Book) toDTO() BookResponse {
	return BookResponse{
		DocID:  b.DocID,
		BookID: b.BookID,
		UserID: b.UserID,
		Title:  b.Title,
		Author: b.Author,
		Genre:  b.Genre,
		ISBN:   b.ISBN,
		Domain: b.Domain,
	}
}

func (in BookRequest) toModel() *Book {
	return &Book{
		UserID: in.UserID,
		Title:  in.Title,
		Author: in.Author,
		Genre:  in.Genre,
		ISBN:   in.ISBN,
		Domain: in.Domain,
	}
}
