package dto

type WebhookResponseDTO struct {
	Received bool   `json:"received" example:"true"`
	Status   string `json:"status" example:"processed"`
}
