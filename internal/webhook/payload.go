package webhook

import (
	"encoding/json"
)

type checkoutSession struct {
	ID              string            `json:"id"`
	Mode            string            `json:"mode"`
	Subscription    objectRef         `json:"subscription"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDetails customerDetails   `json:"customer_details"`
	AmountTotal     *int64            `json:"amount_total"`
	Metadata        map[string]string `json:"metadata"`
}

type customerDetails struct {
	Email string `json:"email"`
}

type invoice struct {
	ID            string    `json:"id"`
	BillingReason string    `json:"billing_reason"`
	Subscription  objectRef `json:"subscription"`
	CustomerEmail string    `json:"customer_email"`
	AmountPaid    int64     `json:"amount_paid"`
	Parent        struct {
		SubscriptionDetails struct {
			Subscription objectRef `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// objectRef accepts either a bare id or an expanded object.
type objectRef struct {
	ID string
}

func (r *objectRef) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}
