package httpdto

type CreateChatRequest struct {
	User1ID int64 `json:"user1_id"`
	User2ID int64 `json:"user2_id"`
}

type SendMessageRequest struct {
	SenderID int64  `json:"sender_id"`
	Body     string `json:"body"`
}

// EditMessageRequest carries the replacement body. Body is a pointer so a
// request that omits the field can be told apart from an edit to the empty
// string; only the former is rejected.
type EditMessageRequest struct {
	UserID int64   `json:"user_id"`
	Body   *string `json:"body"`
}

type DeleteMessageRequest struct {
	UserID int64 `json:"user_id"`
}

type MarkReadRequest struct {
	UserID int64 `json:"user_id"`
}

type OperationResult struct {
	OK bool `json:"ok"`
}
