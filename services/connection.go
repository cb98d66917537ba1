package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/tenantvolt/backend/clock"
	"github.com/tenantvolt/backend/models"
	"github.com/tenantvolt/backend/store"
)

// ConnectionService reads and updates the per-product connection flag that
// metering devices maintain alongside their usage data.
type ConnectionService struct {
	store store.Store
	clock clock.Clock
}

func NewConnectionService(st store.Store, clk clock.Clock) *ConnectionService {
	return &ConnectionService{store: st, clock: clk}
}

// GetStatuses resolves the connection flag for each requested tenant.
// Absent or unreadable flags report as disconnected.
func (cs *ConnectionService) GetStatuses(ctx context.Context, tenants []models.TenantRef) []models.TenantStatus {
	statuses := make([]models.TenantStatus, 0, len(tenants))
	for _, tenant := range tenants {
		statuses = append(statuses, models.TenantStatus{
			TenantIndex:      tenant.TenantIndex,
			ConnectionStatus: cs.status(ctx, tenant.ProductID),
		})
	}
	return statuses
}

func (cs *ConnectionService) status(ctx context.Context, productID string) bool {
	raw, err := cs.store.Get(ctx, usagePath(productID, connectionStatusKey))
	if err != nil {
		log.Printf("WARNING: failed to read connection status for %s: %v", productID, err)
		return false
	}
	status, _ := raw.(bool)
	return status
}

func (cs *ConnectionService) UpdateStatus(ctx context.Context, productID string, status bool) error {
	if err := cs.store.Set(ctx, usagePath(productID, connectionStatusKey), status); err != nil {
		return fmt.Errorf("updating connection status for %s: %w", productID, err)
	}
	log.Printf("Connection status of %s updated to %v", productID, status)
	return nil
}

// AllStatuses reports every user's product connection flag plus a
// best-effort "last active" timestamp derived from the newest recorded
// sample.
func (cs *ConnectionService) AllStatuses(ctx context.Context) models.AllConnectionStatusResponse {
	timestamp := cs.clock.Now().Format("2006-01-02 15:04:05")

	raw, err := cs.store.Get(ctx, usersRoot)
	if err != nil {
		log.Printf("ERROR: failed to read users: %v", err)
		return models.AllConnectionStatusResponse{Timestamp: timestamp, Users: []models.UserProductStatus{}}
	}

	usersData, _ := raw.(map[string]interface{})
	usernames := make([]string, 0, len(usersData))
	for username := range usersData {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	users := []models.UserProductStatus{}
	for _, username := range usernames {
		userData, ok := usersData[username].(map[string]interface{})
		if !ok {
			continue
		}
		productID, _ := userData["product_id"].(string)
		if productID == "" {
			continue
		}
		email, _ := userData["email"].(string)

		users = append(users, models.UserProductStatus{
			Username:         username,
			ProductID:        productID,
			Email:            email,
			ConnectionStatus: cs.status(ctx, productID),
			LastActive:       cs.lastActive(ctx, productID),
		})
	}

	return models.AllConnectionStatusResponse{
		Timestamp:  timestamp,
		Users:      users,
		TotalCount: len(users),
	}
}

// lastActive finds the newest date, hour and minute carrying a sample.
func (cs *ConnectionService) lastActive(ctx context.Context, productID string) *string {
	raw, err := cs.store.Get(ctx, usagePath(productID))
	if err != nil {
		log.Printf("WARNING: failed to determine last active time for %s: %v", productID, err)
		return nil
	}

	usageData, _ := raw.(map[string]interface{})
	dates := make([]string, 0, len(usageData))
	for date := range usageData {
		if date != connectionStatusKey && strings.Contains(date, "-") {
			dates = append(dates, date)
		}
	}
	if len(dates) == 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	latestDate := dates[0]

	dayData, _ := usageData[latestDate].(map[string]interface{})
	hours := make([]int, 0, len(dayData))
	for hour := range dayData {
		if h, err := strconv.Atoi(hour); err == nil {
			hours = append(hours, h)
		}
	}
	if len(hours) == 0 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.IntSlice(hours)))
	latestHour := fmt.Sprintf("%02d", hours[0])
	if _, ok := dayData[latestHour]; !ok {
		// Some devices write unpadded hour keys.
		latestHour = strconv.Itoa(hours[0])
	}

	switch hourData := dayData[latestHour].(type) {
	case map[string]interface{}:
		minutes := make([]int, 0, len(hourData))
		for minute := range hourData {
			if m, err := strconv.Atoi(minute); err == nil {
				minutes = append(minutes, m)
			}
		}
		if len(minutes) == 0 {
			return nil
		}
		sort.Sort(sort.Reverse(sort.IntSlice(minutes)))
		active := fmt.Sprintf("%s %s:%02d", latestDate, latestHour, minutes[0])
		return &active
	case []interface{}:
		for i := len(hourData) - 1; i >= 0; i-- {
			if hourData[i] != nil {
				active := fmt.Sprintf("%s %s:%02d", latestDate, latestHour, i)
				return &active
			}
		}
	}
	return nil
}
