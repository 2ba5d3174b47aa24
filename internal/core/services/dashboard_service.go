package services

import (
	"context"
	"time"

	"salescrm/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService aggregates reporting figures straight off the tables.
// Pipeline money amounts are summed in SQL and carried as decimals so no
// float rounding sneaks into the reports.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// StageBreakdown represents one pipeline stage's slice of the funnel
type StageBreakdown struct {
	Stage         domain.OpportunityStage `json:"stage"`
	Count         int64                   `json:"count"`
	TotalValue    decimal.Decimal         `json:"total_value"`
	WeightedValue decimal.Decimal         `json:"weighted_value"`
}

// SalesDashboardData represents the main sales dashboard
type SalesDashboardData struct {
	// Lead funnel
	TotalLeads     int64 `json:"total_leads"`
	NewLeads       int64 `json:"new_leads"`
	QualifiedLeads int64 `json:"qualified_leads"`
	ConvertedLeads int64 `json:"converted_leads"`

	// Customers
	TotalCustomers  int64 `json:"total_customers"`
	ActiveCustomers int64 `json:"active_customers"`

	// Pipeline
	OpenOpportunities     int64           `json:"open_opportunities"`
	OverdueOpportunities  int64           `json:"overdue_opportunities"`
	PipelineValue         decimal.Decimal `json:"pipeline_value"`
	WeightedPipelineValue decimal.Decimal `json:"weighted_pipeline_value"`
	StageBreakdown        []StageBreakdown `json:"stage_breakdown"`

	// Closed business
	WonThisMonth      int64           `json:"won_this_month"`
	WonValueThisMonth decimal.Decimal `json:"won_value_this_month"`
	LostThisMonth     int64           `json:"lost_this_month"`

	// Activity load
	OverdueActivities  int64              `json:"overdue_activities"`
	UpcomingActivities []ActivitySummary  `json:"upcoming_activities"`
	TopOwners          []OwnerPerformance `json:"top_owners"`
}

// ActivitySummary represents an activity row on the dashboard
type ActivitySummary struct {
	ID       uint       `json:"id"`
	Subject  string     `json:"subject"`
	Type     string     `json:"type"`
	DueDate  *time.Time `json:"due_date"`
	Assignee string     `json:"assignee"`
}

// OwnerPerformance represents an owner's win/loss record
type OwnerPerformance struct {
	OwnerID   uint            `json:"owner_id"`
	OwnerName string          `json:"owner_name"`
	OpenCount int64           `json:"open_count"`
	WonCount  int64           `json:"won_count"`
	LostCount int64           `json:"lost_count"`
	WonValue  decimal.Decimal `json:"won_value"`
}

// GetSalesDashboard returns the aggregated sales dashboard
func (s *DashboardService) GetSalesDashboard(ctx context.Context) (*SalesDashboardData, error) {
	data := &SalesDashboardData{}

	// Lead funnel
	s.db.WithContext(ctx).Table("leads").Where("deleted_at IS NULL").Count(&data.TotalLeads)
	s.db.WithContext(ctx).Table("leads").
		Where("status = ? AND deleted_at IS NULL", domain.LeadNew).Count(&data.NewLeads)
	s.db.WithContext(ctx).Table("leads").
		Where("status = ? AND deleted_at IS NULL", domain.LeadQualified).Count(&data.QualifiedLeads)
	s.db.WithContext(ctx).Table("leads").
		Where("is_converted = ? AND deleted_at IS NULL", true).Count(&data.ConvertedLeads)

	// Customer counts
	s.db.WithContext(ctx).Table("customers").Where("deleted_at IS NULL").Count(&data.TotalCustomers)
	s.db.WithContext(ctx).Table("customers").
		Where("status = ? AND deleted_at IS NULL", domain.CustomerActive).Count(&data.ActiveCustomers)

	// Open pipeline
	s.db.WithContext(ctx).Table("opportunities").
		Where("status = ? AND deleted_at IS NULL", domain.OpportunityOpen).
		Count(&data.OpenOpportunities)

	s.db.WithContext(ctx).Table("opportunities").
		Where("status = ? AND expected_close_date IS NOT NULL AND expected_close_date < ? AND deleted_at IS NULL",
			domain.OpportunityOpen, time.Now()).
		Count(&data.OverdueOpportunities)

	var pipeline struct {
		Total    decimal.Decimal
		Weighted decimal.Decimal
	}
	s.db.WithContext(ctx).Table("opportunities").
		Where("status = ? AND deleted_at IS NULL", domain.OpportunityOpen).
		Select("COALESCE(SUM(value), 0) as total, COALESCE(SUM(value * probability / 100), 0) as weighted").
		Scan(&pipeline)
	data.PipelineValue = pipeline.Total
	data.WeightedPipelineValue = pipeline.Weighted

	// Per-stage breakdown over open stages, in pipeline order
	for _, stage := range domain.PipelineStages() {
		if domain.IsTerminal(stage) {
			continue
		}
		row := StageBreakdown{Stage: stage}
		s.db.WithContext(ctx).Table("opportunities").
			Where("stage = ? AND deleted_at IS NULL", stage).
			Count(&row.Count)
		var sums struct {
			Total    decimal.Decimal
			Weighted decimal.Decimal
		}
		s.db.WithContext(ctx).Table("opportunities").
			Where("stage = ? AND deleted_at IS NULL", stage).
			Select("COALESCE(SUM(value), 0) as total, COALESCE(SUM(value * probability / 100), 0) as weighted").
			Scan(&sums)
		row.TotalValue = sums.Total
		row.WeightedValue = sums.Weighted
		data.StageBreakdown = append(data.StageBreakdown, row)
	}

	// This month's closed business
	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("opportunities").
		Where("status = ? AND actual_close_date >= ? AND deleted_at IS NULL", domain.OpportunityWon, startOfMonth).
		Count(&data.WonThisMonth)

	var wonValue decimal.Decimal
	s.db.WithContext(ctx).Table("opportunities").
		Where("status = ? AND actual_close_date >= ? AND deleted_at IS NULL", domain.OpportunityWon, startOfMonth).
		Select("COALESCE(SUM(value), 0)").
		Scan(&wonValue)
	data.WonValueThisMonth = wonValue

	s.db.WithContext(ctx).Table("opportunities").
		Where("status = ? AND actual_close_date >= ? AND deleted_at IS NULL", domain.OpportunityLost, startOfMonth).
		Count(&data.LostThisMonth)

	// Activity load
	s.db.WithContext(ctx).Table("activities").
		Where("due_date < ? AND status NOT IN ? AND deleted_at IS NULL",
			time.Now(), []domain.ActivityStatus{domain.ActivityCompleted, domain.ActivityCancelled}).
		Count(&data.OverdueActivities)

	var upcoming []struct {
		ID       uint
		Subject  string
		Type     string
		DueDate  *time.Time
		Assignee string
	}
	s.db.WithContext(ctx).Table("activities").
		Select("activities.id, activities.subject, activities.type, activities.due_date, COALESCE(CONCAT(users.first_name, ' ', users.last_name), '') as assignee").
		Joins("LEFT JOIN users ON activities.assigned_to_id = users.id").
		Where("activities.status = ? AND activities.due_date >= ? AND activities.deleted_at IS NULL",
			domain.ActivityPlanned, time.Now()).
		Order("activities.due_date ASC").
		Limit(10).
		Scan(&upcoming)

	data.UpcomingActivities = make([]ActivitySummary, len(upcoming))
	for i, a := range upcoming {
		data.UpcomingActivities[i] = ActivitySummary{
			ID:       a.ID,
			Subject:  a.Subject,
			Type:     a.Type,
			DueDate:  a.DueDate,
			Assignee: a.Assignee,
		}
	}

	// Top owners by won value
	var owners []struct {
		OwnerID   uint
		OwnerName string
		OpenCount int64
		WonCount  int64
		LostCount int64
		WonValue  decimal.Decimal
	}
	s.db.WithContext(ctx).Table("opportunities").
		Select(`
			opportunities.owner_id,
			CONCAT(users.first_name, ' ', users.last_name) as owner_name,
			SUM(CASE WHEN opportunities.status = 'OPEN' THEN 1 ELSE 0 END) as open_count,
			SUM(CASE WHEN opportunities.status = 'WON' THEN 1 ELSE 0 END) as won_count,
			SUM(CASE WHEN opportunities.status = 'LOST' THEN 1 ELSE 0 END) as lost_count,
			COALESCE(SUM(CASE WHEN opportunities.status = 'WON' THEN opportunities.value ELSE 0 END), 0) as won_value
		`).
		Joins("LEFT JOIN users ON opportunities.owner_id = users.id").
		Where("opportunities.deleted_at IS NULL").
		Group("opportunities.owner_id, users.first_name, users.last_name").
		Order("won_value DESC").
		Limit(5).
		Scan(&owners)

	data.TopOwners = make([]OwnerPerformance, len(owners))
	for i, o := range owners {
		data.TopOwners[i] = OwnerPerformance{
			OwnerID:   o.OwnerID,
			OwnerName: o.OwnerName,
			OpenCount: o.OpenCount,
			WonCount:  o.WonCount,
			LostCount: o.LostCount,
			WonValue:  o.WonValue,
		}
	}

	return data, nil
}

// RepDashboardData represents a sales rep's personal dashboard
type RepDashboardData struct {
	MyOpenOpportunities int64             `json:"my_open_opportunities"`
	MyPipelineValue     decimal.Decimal   `json:"my_pipeline_value"`
	MyWeightedValue     decimal.Decimal   `json:"my_weighted_value"`
	MyWonThisMonth      int64             `json:"my_won_this_month"`
	MyAssignedLeads     int64             `json:"my_assigned_leads"`
	MyOverdueActivities int64             `json:"my_overdue_activities"`
	TodayActivities     []ActivitySummary `json:"today_activities"`
}

// GetRepDashboard returns a sales rep's personal figures
func (s *DashboardService) GetRepDashboard(ctx context.Context, userID uint) (*RepDashboardData, error) {
	data := &RepDashboardData{}

	s.db.WithContext(ctx).Table("opportunities").
		Where("owner_id = ? AND status = ? AND deleted_at IS NULL", userID, domain.OpportunityOpen).
		Count(&data.MyOpenOpportunities)

	var pipeline struct {
		Total    decimal.Decimal
		Weighted decimal.Decimal
	}
	s.db.WithContext(ctx).Table("opportunities").
		Where("owner_id = ? AND status = ? AND deleted_at IS NULL", userID, domain.OpportunityOpen).
		Select("COALESCE(SUM(value), 0) as total, COALESCE(SUM(value * probability / 100), 0) as weighted").
		Scan(&pipeline)
	data.MyPipelineValue = pipeline.Total
	data.MyWeightedValue = pipeline.Weighted

	startOfMonth := time.Now().AddDate(0, 0, -time.Now().Day()+1).Truncate(24 * time.Hour)
	s.db.WithContext(ctx).Table("opportunities").
		Where("owner_id = ? AND status = ? AND actual_close_date >= ? AND deleted_at IS NULL",
			userID, domain.OpportunityWon, startOfMonth).
		Count(&data.MyWonThisMonth)

	s.db.WithContext(ctx).Table("leads").
		Where("assigned_to_id = ? AND is_converted = ? AND deleted_at IS NULL", userID, false).
		Count(&data.MyAssignedLeads)

	s.db.WithContext(ctx).Table("activities").
		Where("assigned_to_id = ? AND due_date < ? AND status NOT IN ? AND deleted_at IS NULL",
			userID, time.Now(), []domain.ActivityStatus{domain.ActivityCompleted, domain.ActivityCancelled}).
		Count(&data.MyOverdueActivities)

	today := time.Now().Truncate(24 * time.Hour)
	tomorrow := today.AddDate(0, 0, 1)
	var todayActs []struct {
		ID      uint
		Subject string
		Type    string
		DueDate *time.Time
	}
	s.db.WithContext(ctx).Table("activities").
		Select("id, subject, type, due_date").
		Where("assigned_to_id = ? AND due_date >= ? AND due_date < ? AND deleted_at IS NULL",
			userID, today, tomorrow).
		Order("due_date ASC").
		Scan(&todayActs)

	data.TodayActivities = make([]ActivitySummary, len(todayActs))
	for i, a := range todayActs {
		data.TodayActivities[i] = ActivitySummary{
			ID:      a.ID,
			Subject: a.Subject,
			Type:    a.Type,
			DueDate: a.DueDate,
		}
	}

	return data, nil
}
