package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/ljourdain/atelier-shop/internal/adapter/storage"
	"github.com/ljourdain/atelier-shop/internal/core/domain"
)

// Fires many concurrent confirmation attempts at a single pending order
// to demonstrate that the guarded status transition applies exactly once,
// however a synchronous confirm and a webhook delivery race.

const (
	mysqlDSN      = "root:root@tcp(localhost:3306)/atelier?parseTime=true"
	totalRequests = 50
)

func main() {
	ctx := context.Background()

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	adapter := storage.NewMySQLAdapter(db)

	order := domain.Order{
		ID:        uuid.New(),
		UserID:    1,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := adapter.CreateOrder(ctx, order); err != nil {
		log.Fatalf("failed to create order: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, order.ID.String())

	var appliedCount atomic.Int32
	var noopCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()

			applied, err := adapter.UpdateOrderStatus(ctx, order.ID,
				domain.OrderStatusPending, domain.OrderStatusConfirmed,
				fmt.Sprintf("pi_storm_%d", attempt))
			if err != nil {
				log.Printf("attempt %d: %v", attempt, err)
				return
			}
			if applied {
				appliedCount.Add(1)
			} else {
				noopCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	applied := appliedCount.Load()
	noop := noopCount.Load()

	fmt.Println("========== TRANSITION STORM RESULTS ==========")
	fmt.Printf("Order:            %s\n", order.ID)
	fmt.Printf("Total Attempts:   %d\n", totalRequests)
	fmt.Printf("Applied:          %d\n", applied)
	fmt.Printf("No-ops:           %d\n", noop)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==============================================")

	if applied == 1 && noop == int32(totalRequests-1) {
		fmt.Println("PASS: Exactly one transition applied")
	} else {
		fmt.Printf("FAIL: Expected 1 applied/%d no-ops, got %d/%d\n",
			totalRequests-1, applied, noop)
	}

	final, err := adapter.GetOrder(ctx, order.ID)
	if err != nil || final == nil {
		log.Fatalf("failed to reload order: %v", err)
	}
	fmt.Printf("Final Status:     %s\n", final.Status)
	fmt.Printf("Payment Token:    %s\n", final.PaymentToken)

	if final.Status == domain.OrderStatusConfirmed && final.PaymentToken != "" {
		fmt.Println("PASS: Order confirmed with a single payment token")
	} else {
		fmt.Println("FAIL: Order not confirmed as expected")
	}
}
