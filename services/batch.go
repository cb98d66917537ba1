package services

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/tenantvolt/backend/clock"
	"github.com/tenantvolt/backend/models"
	"github.com/tenantvolt/backend/store"
)

// MonthlyBiller computes and persists last month's bill for every product
// known to the usage store. Products fail independently: one broken
// product never stops the rest of the run, and a run may safely repeat
// for the same month since records overwrite in place.
type MonthlyBiller struct {
	store    store.Store
	clock    clock.Clock
	billing  *BillingService
	notifier *Notifier
}

func NewMonthlyBiller(st store.Store, clk clock.Clock, billing *BillingService, notifier *Notifier) *MonthlyBiller {
	return &MonthlyBiller{
		store:    st,
		clock:    clk,
		billing:  billing,
		notifier: notifier,
	}
}

func (m *MonthlyBiller) Run(ctx context.Context) {
	now := m.clock.Now()
	lastMonth := m.billing.PreviousMonth()

	log.Printf("=== MONTHLY BILL RUN for %s ===", lastMonth)

	raw, err := m.store.Get(ctx, usageRoot)
	if err != nil {
		log.Printf("ERROR: failed to list products: %v", err)
		return
	}

	products, _ := raw.(map[string]interface{})
	productIDs := make([]string, 0, len(products))
	for productID := range products {
		if productID == connectionStatusKey {
			continue
		}
		productIDs = append(productIDs, productID)
	}
	sort.Strings(productIDs)

	billed := 0
	for _, productID := range productIDs {
		if err := m.billProduct(ctx, productID, lastMonth, now); err != nil {
			log.Printf("ERROR: failed to bill product %s for %s: %v", productID, lastMonth, err)
			continue
		}
		billed++
	}

	log.Printf("=== MONTHLY BILL RUN complete: %d of %d products billed ===", billed, len(productIDs))
}

func (m *MonthlyBiller) billProduct(ctx context.Context, productID, yearMonth string, now time.Time) error {
	totalKWh, err := m.billing.TotalKWhForMonth(ctx, productID, yearMonth)
	if err != nil {
		return err
	}
	amount := CalculateBillAmount(totalKWh)

	record := models.BillRecord{
		KwValue:      totalKWh,
		Amount:       amount,
		Status:       "not_paid",
		PaymentDate:  nil,
		CalculatedAt: now.Format(time.RFC3339),
	}
	if err := m.store.Set(ctx, billsPath(productID, yearMonth), record); err != nil {
		return err
	}

	// The record is persisted at this point; a notification failure must
	// not undo or report that as a billing failure.
	if err := m.notifier.BillCalculated(ctx, productID, yearMonth, amount, totalKWh); err != nil {
		log.Printf("WARNING: failed to notify external API about bill for %s: %v", productID, err)
	}

	log.Printf("Bill calculated for product %s for %s: %.2f kWh, amount %.2f", productID, yearMonth, totalKWh, amount)
	return nil
}
