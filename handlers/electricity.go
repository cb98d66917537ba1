package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/tenantvolt/backend/models"
	"github.com/tenantvolt/backend/services"
)

type ElectricityHandler struct {
	usage      *services.UsageService
	connection *services.ConnectionService
}

func NewElectricityHandler(usage *services.UsageService, connection *services.ConnectionService) *ElectricityHandler {
	return &ElectricityHandler{usage: usage, connection: connection}
}

func (h *ElectricityHandler) Minutely(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	productID, date, hour := vars["product_id"], vars["date"], vars["hour"]

	if !validDate(date) {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !validHour(hour) {
		http.Error(w, "Invalid hour, expected HH (00-23)", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.usage.GetMinutelyUsage(r.Context(), productID, date, hour))
}

func (h *ElectricityHandler) Hourly(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	productID, date := vars["product_id"], vars["date"]

	if !validDate(date) {
		http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.usage.GetHourlyUsage(r.Context(), productID, date))
}

func (h *ElectricityHandler) Daily(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	productID, yearMonth := vars["product_id"], vars["year_month"]

	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		http.Error(w, "Invalid year-month, expected YYYY-MM", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.usage.GetDailyUsage(r.Context(), productID, yearMonth))
}

func (h *ElectricityHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	productID, year := vars["product_id"], vars["year"]

	if _, err := time.Parse("2006", year); err != nil {
		http.Error(w, "Invalid year, expected YYYY", http.StatusBadRequest)
		return
	}

	writeJSON(w, h.usage.GetMonthlyUsage(r.Context(), productID, year))
}

func (h *ElectricityHandler) ConnectionStatuses(w http.ResponseWriter, r *http.Request) {
	var req models.TenantsListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	statuses := h.connection.GetStatuses(r.Context(), req.Tenants)
	writeJSON(w, models.TenantsStatusResponse{Tenants: statuses})
}

func (h *ElectricityHandler) UpdateConnectionStatus(w http.ResponseWriter, r *http.Request) {
	var req models.ConnectionStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		http.Error(w, "product_id is required", http.StatusBadRequest)
		return
	}

	if err := h.connection.UpdateStatus(r.Context(), req.ProductID, req.ConnectionStatus); err != nil {
		log.Printf("ERROR: %v", err)
		http.Error(w, "Failed to update connection status for product "+req.ProductID, http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{
		"message": "Connection status of " + req.ProductID + " updated to " + strconv.FormatBool(req.ConnectionStatus) + " successfully",
	})
}

func (h *ElectricityHandler) AllConnectionStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.connection.AllStatuses(r.Context()))
}

func validDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func validHour(hour string) bool {
	if len(hour) != 2 {
		return false
	}
	n, err := strconv.Atoi(hour)
	return err == nil && n >= 0 && n <= 23
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode response: %v", err)
	}
}
