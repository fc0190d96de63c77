// Package dashboard は他ドメインの集計を読み取り専用で束ねる。
package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vitalops-backend/internal/field_ops/jobs"
	"vitalops-backend/internal/platform/money"
	"vitalops-backend/internal/rental_mgmt/assets"
	"vitalops-backend/internal/rental_mgmt/invoices"
	"vitalops-backend/internal/rental_mgmt/payments"
	"vitalops-backend/internal/rental_mgmt/sales"
	"vitalops-backend/internal/rental_mgmt/sleepstudies"
)

type Overview struct {
	Assets struct {
		Total       int64                   `json:"total"`
		Available   int64                   `json:"available"`
		Rented      int64                   `json:"rented"`
		Utilization float64                 `json:"utilization_rate"`
		ByStatus    map[assets.Status]int64 `json:"by_status"`
	} `json:"assets"`
	ActiveRentals       int64                  `json:"active_rentals"`
	OutstandingAmount   money.Money            `json:"outstanding_amount"`
	OverdueInvoices     int64                  `json:"overdue_invoices"`
	TodayJobs           map[jobs.Status]int64  `json:"today_jobs"`
	OpenSleepStudies    int64                  `json:"open_sleep_studies"`
	MonthCollected      money.Money            `json:"month_collected"`
	MonthSalesRevenue   money.Money            `json:"month_sales_revenue"`
	GeneratedAt         time.Time              `json:"generated_at"`
}

type MonthlyStats struct {
	Year           int         `json:"year"`
	Month          int         `json:"month"`
	RentalsStarted int64       `json:"rentals_started"`
	Collected      money.Money `json:"collected"`
	SalesCount     int64       `json:"sales_count"`
	SalesRevenue   money.Money `json:"sales_revenue"`
	JobsCompleted  int64       `json:"jobs_completed"`
}

type Service struct {
	db       *sql.DB
	assets   *assets.Store
	invoices *invoices.Store
	payments *payments.Store
	jobs     *jobs.Store
	studies  *sleepstudies.Store
	sales    *sales.Store
}

func NewService(d *sql.DB) *Service {
	return &Service{
		db:       d,
		assets:   assets.NewStore(d),
		invoices: invoices.NewStore(d),
		payments: payments.NewStore(d),
		jobs:     jobs.NewStore(d),
		studies:  sleepstudies.NewStore(d),
		sales:    sales.NewStore(d),
	}
}

func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	now := time.Now().UTC()
	var o Overview
	o.GeneratedAt = now

	byStatus, err := s.assets.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: asset counts: %w", err)
	}
	o.Assets.ByStatus = byStatus
	for _, n := range byStatus {
		o.Assets.Total += n
	}
	o.Assets.Available = byStatus[assets.StatusAvailable]
	o.Assets.Rented = byStatus[assets.StatusRented]
	if o.Assets.Total > 0 {
		o.Assets.Utilization = float64(o.Assets.Rented) / float64(o.Assets.Total) * 100
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals WHERE status = 'ACTIVE'`).Scan(&o.ActiveRentals); err != nil {
		return nil, fmt.Errorf("dashboard: active rentals: %w", err)
	}

	o.OutstandingAmount, err = s.invoices.OutstandingTotal(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: outstanding total: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invoices
		 WHERE status IN ('SENT', 'PARTIALLY_PAID') AND due_date < ?`, now).Scan(&o.OverdueInvoices); err != nil {
		return nil, fmt.Errorf("dashboard: overdue invoices: %w", err)
	}

	o.TodayJobs, err = s.jobs.CountTodayByStatus(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("dashboard: today jobs: %w", err)
	}

	o.OpenSleepStudies, err = s.studies.CountOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: open sleep studies: %w", err)
	}

	o.MonthCollected, err = s.payments.MonthCollected(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return nil, fmt.Errorf("dashboard: month collected: %w", err)
	}

	totals, err := s.sales.MonthlyTotals(ctx, now.Year(), int(now.Month()))
	if err != nil {
		return nil, fmt.Errorf("dashboard: month sales: %w", err)
	}
	for _, v := range totals {
		o.MonthSalesRevenue += v.Revenue
	}

	return &o, nil
}

func (s *Service) Monthly(ctx context.Context, year, month int) (*MonthlyStats, error) {
	if year < 2000 || month < 1 || month > 12 {
		return nil, errors.New("invalid year/month")
	}
	m := &MonthlyStats{Year: year, Month: month}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals WHERE YEAR(created_at) = ? AND MONTH(created_at) = ?`,
		year, month).Scan(&m.RentalsStarted); err != nil {
		return nil, fmt.Errorf("dashboard: rentals started: %w", err)
	}

	var err error
	m.Collected, err = s.payments.MonthCollected(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("dashboard: collected: %w", err)
	}

	totals, err := s.sales.MonthlyTotals(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("dashboard: sales totals: %w", err)
	}
	for _, v := range totals {
		m.SalesCount += v.Count
		m.SalesRevenue += v.Revenue
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs
		 WHERE status = 'COMPLETED' AND YEAR(completed_at) = ? AND MONTH(completed_at) = ?`,
		year, month).Scan(&m.JobsCompleted); err != nil {
		return nil, fmt.Errorf("dashboard: jobs completed: %w", err)
	}

	return m, nil
}
