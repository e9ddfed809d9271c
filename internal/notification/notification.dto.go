package notification

import "github.com/google/uuid"

type CreateNotificationRequest struct {
	LearnerID uuid.UUID        `json:"learner_id" validate:"required"`
	Type      NotificationType `json:"type" validate:"required"`
	Title     string           `json:"title" validate:"required"`
	Message   string           `json:"message" validate:"required"`
	Data      map[string]any   `json:"data"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type ListResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
	TotalCount    int             `json:"total_count"`
	Page          int             `json:"page"`
	PageSize      int             `json:"page_size"`
}
