package payment

import (
	"fmt"
	"time"

	"github.com/zerowaste/payment-service/internal/domain"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseUserFilter validates the raw query filters of a user listing.
// The end date covers the whole day it names.
func ParseUserFilter(userID, status, startDate, endDate string) (domain.PaymentFilter, error) {
	filter := domain.PaymentFilter{UserID: userID}

	if status != "" {
		s, ok := domain.ParseStatus(status)
		if !ok {
			return filter, domain.NewPaymentError(domain.ErrInvalidFilter,
				fmt.Sprintf("invalid status '%s'; use one of %v", status, domain.Statuses),
				"INVALID_STATUS")
		}
		filter.Status = s
	}

	if startDate != "" {
		start, err := parseDate(startDate)
		if err != nil {
			return filter, domain.NewPaymentError(domain.ErrInvalidFilter,
				"invalid startDate; use the format YYYY-MM-DD",
				"INVALID_DATE")
		}
		filter.CreatedFrom = &start
	}

	if endDate != "" {
		end, err := parseDate(endDate)
		if err != nil {
			return filter, domain.NewPaymentError(domain.ErrInvalidFilter,
				"invalid endDate; use the format YYYY-MM-DD",
				"INVALID_DATE")
		}
		end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(999*time.Millisecond), end.Location())
		filter.CreatedTo = &end
	}

	return filter, nil
}

func parseDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
