package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tenantvolt/backend/models"
	"github.com/tenantvolt/backend/services"
)

type BillHandler struct {
	billing    *services.BillingService
	statements *services.StatementGenerator
}

func NewBillHandler(billing *services.BillingService, statements *services.StatementGenerator) *BillHandler {
	return &BillHandler{billing: billing, statements: statements}
}

// Generate computes the previous month's bill for a user on demand. The
// result is not persisted; only the monthly batch run writes bill records.
func (h *BillHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.BillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.billing.GenerateBill(r.Context(), req.Username))
}

func (h *BillHandler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	writeJSON(w, h.billing.GetPaymentHistory(r.Context(), username))
}

// LatestBills resolves the most recent bill record for each tenant's
// product. Tenants with no bill history get the "no_bill" sentinel.
func (h *BillHandler) LatestBills(w http.ResponseWriter, r *http.Request) {
	var req models.TenantsListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tenants := make([]models.TenantBill, 0, len(req.Tenants))
	for _, tenant := range req.Tenants {
		details := h.billing.LatestBill(r.Context(), tenant.ProductID)
		tenants = append(tenants, models.TenantBill{
			TenantIndex: tenant.TenantIndex,
			ProductID:   tenant.ProductID,
			BillDetails: &details,
		})
	}

	writeJSON(w, models.TenantsBillsResponse{Tenants: tenants})
}

// Statement renders the user's current bill as a PDF download.
func (h *BillHandler) Statement(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	bill := h.billing.GenerateBill(r.Context(), username)
	pdf, err := h.statements.BillStatement(bill)
	if err != nil {
		log.Printf("ERROR: failed to render statement for %s: %v", username, err)
		http.Error(w, "Failed to render bill statement", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bill-%s-%s.pdf", username, bill.YearMonth))
	w.Write(pdf)
}
