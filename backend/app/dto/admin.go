package dto

type UserBrief struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type CompletionResponse struct {
	ID          uint    `json:"id"`
	TaskID      uint    `json:"task_id"`
	TaskTitle   string  `json:"task_title"`
	UserID      uint    `json:"user_id"`
	UserName    string  `json:"user_name"`
	RequestedAt string  `json:"requested_at"`
	Status      string  `json:"status"`
	DecidedAt   *string `json:"decided_at"`
}

type DecideCompletionRequest struct {
	Status string `json:"status"`
}
