package conversation

// ChatRequest is the body of a public chat call.
type ChatRequest struct {
	SenderID string `json:"senderId" binding:"required,min=1,max=255"`
	Message  string `json:"message" binding:"required,min=1,max=5000"`
}

// HistoryQuery holds the query parameters of a public history call.
type HistoryQuery struct {
	SenderID string `form:"senderId" binding:"required,min=1,max=255"`
}
