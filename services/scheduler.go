package services

import (
	"context"
	"log"
	"time"

	"github.com/tenantvolt/backend/clock"
)

// BillScheduler polls the clock and fires the monthly bill run inside the
// first ten minutes after midnight on the first day of a month. The run
// overwrites existing records, so firing more than once in the window is
// harmless.
type BillScheduler struct {
	biller   *MonthlyBiller
	clock    clock.Clock
	interval time.Duration
	stopChan chan bool
}

func NewBillScheduler(biller *MonthlyBiller, clk clock.Clock, interval time.Duration) *BillScheduler {
	return &BillScheduler{
		biller:   biller,
		clock:    clk,
		interval: interval,
		stopChan: make(chan bool),
	}
}

func (s *BillScheduler) Start() {
	log.Printf("Bill scheduler started, checking for new month every %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkForNewMonth()
		case <-s.stopChan:
			log.Println("Bill scheduler stopped")
			return
		}
	}
}

func (s *BillScheduler) Stop() {
	s.stopChan <- true
}

func (s *BillScheduler) checkForNewMonth() {
	now := s.clock.Now()
	if !inBillingWindow(now) {
		return
	}
	log.Printf("New month detected at %s, starting bill run", now.Format(time.RFC3339))
	s.biller.Run(context.Background())
}

func inBillingWindow(now time.Time) bool {
	return now.Day() == 1 && now.Hour() == 0 && now.Minute() < 10
}
