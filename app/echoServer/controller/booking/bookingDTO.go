package booking

// ThingRequestReq carries the optional per-category fields of a booking
// request. Date fields use YYYY-MM-DD.
type ThingRequestReq struct {
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	DeliveryDate string `json:"delivery_date,omitempty"`
	Quantity     int    `json:"quantity,omitempty" validate:"omitempty,gte=1"`
}

// CalendarEntry is the guest projection of a blocked period: dates and
// status only, no requester identity and no booking code.
type CalendarEntry struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Status    string `json:"status"`
}

// OwnerCalendarEntry is the owner projection with full details.
type OwnerCalendarEntry struct {
	BookingCode    string `json:"booking_code"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	DeliveryDate   string `json:"delivery_date,omitempty"`
	Quantity       *int   `json:"quantity,omitempty"`
	RequesterCode  string `json:"requester_code"`
	RequesterEmail string `json:"requester_email"`
	Status         string `json:"status"`
}
