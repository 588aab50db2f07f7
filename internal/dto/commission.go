package dto

import "time"

type BalanceResponseDTO struct {
	CommissionBalance string `json:"commission_balance" example:"12.40"`
}

type CommissionResponseDTO struct {
	EventID     string    `json:"event_id" example:"evt_1PqM2xLkdIwHu7ix"`
	SourcePayer string    `json:"source_payer" example:"payer@example.com"`
	Amount      string    `json:"amount" example:"3.00"`
	Reason      string    `json:"reason" example:"direct"`
	CreatedAt   time.Time `json:"created_at" example:"2024-12-09T16:09:57+03:00"`
}
