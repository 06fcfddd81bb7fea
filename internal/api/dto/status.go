package dto

type DeliveryStatusResponse struct {
	PostID           string  `json:"post_id"`
	FormattedAddress string  `json:"formatted_address"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Pincode          string  `json:"pincode"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	IsDelivered      bool    `json:"is_delivered"`
}
