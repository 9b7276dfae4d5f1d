package transport

// ListTasksRequest filters the housekeeping task list.
type ListTasksRequest struct {
	Date   string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Type   string `form:"type" validate:"omitempty,oneof=vask sengetoy"`
	Status string `form:"status" validate:"omitempty,oneof=not_started in_progress done"`
}

// CreateTaskRequest creates a manual housekeeping task.
type CreateTaskRequest struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	UnitName string  `json:"unitName" validate:"required,min=1,max=200"`
	Type     string  `json:"type" validate:"required,oneof=vask sengetoy"`
	Title    *string `json:"title,omitempty" validate:"omitempty,max=300"`
	Comment  *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

// UpdateStatusRequest advances a task's workflow status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=not_started in_progress done"`
}

// UpdateCommentRequest sets a task's free-text comment.
type UpdateCommentRequest struct {
	Comment string `json:"comment" validate:"max=1000"`
}

// AttachPhotoRequest attaches a completion photo URL to a task.
type AttachPhotoRequest struct {
	URL string `json:"url" validate:"required,url,max=2000"`
}

// TaskResponse represents a housekeeping task in API responses.
type TaskResponse struct {
	ID                int64   `json:"id"`
	Date              string  `json:"date"`
	UnitName          string  `json:"unitName"`
	UnitKey           string  `json:"unitKey"`
	CabinNo           string  `json:"cabinNo"`
	Title             string  `json:"title"`
	Type              string  `json:"type"`
	Status            string  `json:"status"`
	Comment           *string `json:"comment,omitempty"`
	PhotoURL          *string `json:"photoUrl,omitempty"`
	MewsReservationID *string `json:"mewsReservationId,omitempty"`
	MewsSpaceID       *string `json:"mewsSpaceId,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// TaskListResponse wraps a list of tasks.
type TaskListResponse struct {
	Items []TaskResponse `json:"items"`
	Total int            `json:"total"`
}
