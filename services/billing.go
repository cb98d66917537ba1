package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/tenantvolt/backend/clock"
	"github.com/tenantvolt/backend/models"
	"github.com/tenantvolt/backend/store"
)

type BillingService struct {
	store store.Store
	clock clock.Clock
}

func NewBillingService(st store.Store, clk clock.Clock) *BillingService {
	return &BillingService{store: st, clock: clk}
}

// TotalKWhForMonth computes the energy drawn in a month. Each hour with at
// least one valid sample contributes its average watt reading as one full
// hour of watt-hours; the sum over the month converts to kWh. This is an
// energy total, distinct from the mean-power chart aggregation.
func (bs *BillingService) TotalKWhForMonth(ctx context.Context, productID, yearMonth string) (float64, error) {
	year, month, err := parseYearMonth(yearMonth)
	if err != nil {
		return 0, err
	}

	var totalWattHours float64
	for day := 1; day <= daysInMonth(year, month); day++ {
		date := fmt.Sprintf("%s-%02d", yearMonth, day)

		raw, err := bs.store.Get(ctx, usagePath(productID, date))
		if err != nil {
			return 0, fmt.Errorf("reading usage for %s: %w", date, err)
		}

		node, ok := asSampleNode(raw)
		if !ok {
			continue
		}
		for _, e := range node.entries() {
			if !isDigits(e.key) {
				continue
			}
			values := validSamples(e.raw)
			if len(values) == 0 {
				continue
			}
			// One hour at the hour's average power.
			totalWattHours += mean(values)
		}
	}

	return round2(totalWattHours / 1000), nil
}

// PreviousMonth resolves the billing target month: the calendar month
// before the current one, in the clock's timezone.
func (bs *BillingService) PreviousMonth() string {
	now := bs.clock.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return firstOfMonth.AddDate(0, 0, -1).Format("2006-01")
}

// GenerateBill computes the previous month's bill for a user. A month with
// a recorded payment reports as paid with the actual paid amount; otherwise
// the amount comes from the tiered pricing of the computed usage. Failures
// produce a zero-amount response with a message, never an error.
func (bs *BillingService) GenerateBill(ctx context.Context, username string) models.BillResponse {
	lastMonth := bs.PreviousMonth()

	raw, err := bs.store.Get(ctx, usersPath(username))
	if err != nil {
		log.Printf("ERROR: failed to read user %s: %v", username, err)
		return errorBill(username, lastMonth, "Error generating bill. Please try again later.")
	}

	userData, _ := raw.(map[string]interface{})
	productID, _ := userData["product_id"].(string)
	if productID == "" {
		log.Printf("ERROR: no product_id found for user %s", username)
		return errorBill(username, lastMonth, fmt.Sprintf("No product is configured for user %s.", username))
	}

	totalKWh, err := bs.TotalKWhForMonth(ctx, productID, lastMonth)
	if err != nil {
		log.Printf("ERROR: failed to calculate kWh for %s (%s): %v", username, lastMonth, err)
		return errorBill(username, lastMonth, "Error generating bill. Please try again later.")
	}

	payments := bs.payments(ctx, username)
	if paidRaw, ok := payments[lastMonth]; ok {
		paidAmount, ok := asWatts(paidRaw)
		if !ok {
			log.Printf("WARNING: invalid payment amount for %s %s: %v", username, lastMonth, paidRaw)
			paidAmount = 0
		}
		return models.BillResponse{
			Username:  username,
			YearMonth: lastMonth,
			TotalKWh:  totalKWh,
			Amount:    round2(paidAmount),
			IsPaid:    true,
			Message:   fmt.Sprintf("Bill for %s has already been paid.", lastMonth),
		}
	}

	return models.BillResponse{
		Username:  username,
		YearMonth: lastMonth,
		TotalKWh:  totalKWh,
		Amount:    CalculateBillAmount(totalKWh),
		IsPaid:    false,
		Message:   fmt.Sprintf("Unpaid bill for %s. Please make a payment.", lastMonth),
	}
}

// GetPaymentHistory returns a user's recorded payments, most recent month
// first. Lexicographic order on "YYYY-MM" keys is chronological.
func (bs *BillingService) GetPaymentHistory(ctx context.Context, username string) models.PaymentHistoryResponse {
	raw, err := bs.store.Get(ctx, usersPath(username))
	if err != nil {
		log.Printf("ERROR: failed to read payment history for %s: %v", username, err)
		return models.PaymentHistoryResponse{Username: username, Payments: []models.PaymentRecord{}}
	}

	userData, _ := raw.(map[string]interface{})
	email, _ := userData["email"].(string)

	records := []models.PaymentRecord{}
	for month, amountRaw := range bs.payments(ctx, username) {
		amount, ok := asWatts(amountRaw)
		if !ok {
			log.Printf("WARNING: invalid payment amount for %s: %v", month, amountRaw)
			continue
		}
		records = append(records, models.PaymentRecord{Month: month, Amount: amount})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Month > records[j].Month
	})

	return models.PaymentHistoryResponse{
		Username: username,
		Payments: records,
		Email:    email,
	}
}

// LatestBill returns the most recent bill record for a product, or a
// "no_bill" sentinel when the product has no bill history.
func (bs *BillingService) LatestBill(ctx context.Context, productID string) models.BillDetails {
	raw, err := bs.store.Get(ctx, billsPath(productID))
	if err != nil {
		log.Printf("ERROR: failed to read bills for product %s: %v", productID, err)
		return noBill()
	}

	months, _ := raw.(map[string]interface{})
	if len(months) == 0 {
		return noBill()
	}

	latest := ""
	for month := range months {
		if month > latest {
			latest = month
		}
	}

	record, _ := months[latest].(map[string]interface{})
	return models.BillDetails{
		Month:        &latest,
		Amount:       mapNumber(record, "amount"),
		KwValue:      mapNumber(record, "kw_value"),
		Status:       mapStringOr(record, "status", "unknown"),
		PaymentDate:  mapStringPtr(record, "payment_date"),
		CalculatedAt: mapStringPtr(record, "calculated_at"),
	}
}

func (bs *BillingService) payments(ctx context.Context, username string) map[string]interface{} {
	raw, err := bs.store.Get(ctx, usersPath(username, "payments"))
	if err != nil {
		log.Printf("ERROR: failed to read payments for %s: %v", username, err)
		return nil
	}
	payments, _ := raw.(map[string]interface{})
	return payments
}

func errorBill(username, yearMonth, message string) models.BillResponse {
	return models.BillResponse{
		Username:  username,
		YearMonth: yearMonth,
		Message:   message,
	}
}

func noBill() models.BillDetails {
	return models.BillDetails{Status: "no_bill"}
}

func mapNumber(m map[string]interface{}, key string) float64 {
	v, ok := asWatts(m[key])
	if !ok {
		return 0
	}
	return v
}

func mapStringOr(m map[string]interface{}, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func mapStringPtr(m map[string]interface{}, key string) *string {
	if s, ok := m[key].(string); ok {
		return &s
	}
	return nil
}
