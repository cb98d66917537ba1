package models

type ChartDataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type ChartDataResponse struct {
	DataPoints []ChartDataPoint `json:"data_points"`
	ChartTitle string           `json:"chart_title"`
	XAxisLabel string           `json:"x_axis_label"`
	YAxisLabel string           `json:"y_axis_label"`
}

type PaymentRecord struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type PaymentHistoryResponse struct {
	Username string          `json:"username"`
	Payments []PaymentRecord `json:"payments"`
	Email    string          `json:"email,omitempty"`
}

type BillRequest struct {
	Username string `json:"username"`
}

type BillResponse struct {
	Username    string  `json:"username"`
	YearMonth   string  `json:"year_month"`
	TotalKWh    float64 `json:"total_kwh"`
	Amount      float64 `json:"amount"`
	IsPaid      bool    `json:"is_paid"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Message     string  `json:"message"`
}

// BillRecord is the persisted shape under electricity_bills/{product}/{month}.
type BillRecord struct {
	KwValue      float64 `json:"kw_value"`
	Amount       float64 `json:"amount"`
	Status       string  `json:"status"`
	PaymentDate  *string `json:"payment_date"`
	CalculatedAt string  `json:"calculated_at"`
}

type TenantRef struct {
	TenantIndex int    `json:"tenant_index"`
	ProductID   string `json:"product_id"`
}

type TenantsListRequest struct {
	Tenants []TenantRef `json:"tenants"`
}

type TenantStatus struct {
	TenantIndex      int  `json:"tenant_index"`
	ConnectionStatus bool `json:"connection_status"`
}

type TenantsStatusResponse struct {
	Tenants []TenantStatus `json:"tenants"`
}

type ConnectionStatusUpdate struct {
	ProductID        string `json:"product_id"`
	ConnectionStatus bool   `json:"connection_status"`
}

// BillDetails carries the latest bill for a tenant. Status is "no_bill"
// when the product has no bill history yet.
type BillDetails struct {
	Month        *string `json:"month"`
	Amount       float64 `json:"amount"`
	KwValue      float64 `json:"kw_value"`
	Status       string  `json:"status"`
	PaymentDate  *string `json:"payment_date"`
	CalculatedAt *string `json:"calculated_at"`
}

type TenantBill struct {
	TenantIndex int          `json:"tenant_index"`
	ProductID   string       `json:"product_id"`
	BillDetails *BillDetails `json:"bill_details,omitempty"`
}

type TenantsBillsResponse struct {
	Tenants []TenantBill `json:"tenants"`
}

type UserProductStatus struct {
	Username         string  `json:"username"`
	ProductID        string  `json:"product_id"`
	Email            string  `json:"email"`
	ConnectionStatus bool    `json:"connection_status"`
	LastActive       *string `json:"last_active,omitempty"`
}

type AllConnectionStatusResponse struct {
	Timestamp  string              `json:"timestamp"`
	Users      []UserProductStatus `json:"users"`
	TotalCount int                 `json:"total_count"`
}
