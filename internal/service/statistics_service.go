package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cafebook/internal/apierror"
	"cafebook/internal/dto"
	"cafebook/internal/infra"
	"cafebook/internal/model"
	"cafebook/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	ReportDay   = "day"
	ReportWeek  = "week"
	ReportMonth = "month"

	topProductsLimit = 5
)

// StatisticsService computes sales rollups. Every call rescans the stored
// lines; nothing is cached. Revenue is quantity × list price, vouchers are
// not deducted.
type StatisticsService interface {
	Report(ctx context.Context, q dto.StatisticsQuery) (*dto.StatisticsResponse, error)
	Export(ctx context.Context, q dto.StatisticsQuery) ([]byte, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
	loc  *time.Location
	now  func() time.Time
}

func NewStatisticsService(repo repository.StatisticsRepository, loc *time.Location) StatisticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &statisticsService{repo: repo, loc: loc, now: time.Now}
}

func (s *statisticsService) Report(ctx context.Context, q dto.StatisticsQuery) (*dto.StatisticsResponse, error) {
	anchor, err := s.anchor(q.Date)
	if err != nil {
		return nil, err
	}

	var from, to time.Time
	switch q.Type {
	case ReportDay:
		from, to = anchor, anchor.AddDate(0, 0, 1)
	case ReportWeek:
		// Monday through Sunday
		offset := (int(anchor.Weekday()) + 6) % 7
		from = anchor.AddDate(0, 0, -offset)
		to = from.AddDate(0, 0, 7)
	case ReportMonth:
		from = time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, s.loc)
		to = from.AddDate(0, 1, 0)
	default:
		return nil, apierror.Invalid(apierror.BadInput, "type", "Loại thống kê phải là day, week hoặc month")
	}

	count, err := s.repo.CountInvoices(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}
	rows, err := s.repo.SalesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	report := summarize(rows)
	report.Type = q.Type
	report.From, report.To = from, to
	report.InvoiceCount = count

	switch q.Type {
	case ReportWeek:
		report.Series = s.dailySeries(rows, from)
		report.TopProducts = report.topProducts
	case ReportMonth:
		yearStart := time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, s.loc)
		yearRows, err := s.repo.SalesBetween(ctx, yearStart, yearStart.AddDate(1, 0, 0))
		if err != nil {
			return nil, fmt.Errorf("load yearly sales: %w", err)
		}
		report.Series = s.monthlySeries(yearRows)
		report.TopProducts = report.topProducts
	}
	return &report.StatisticsResponse, nil
}

// Export renders the same report as an .xlsx workbook.
func (s *statisticsService) Export(ctx context.Context, q dto.StatisticsQuery) ([]byte, error) {
	report, err := s.Report(ctx, q)
	if err != nil {
		return nil, err
	}
	return infra.StatisticsWorkbook(report)
}

func (s *statisticsService) anchor(date string) (time.Time, error) {
	if date == "" {
		n := s.now().In(s.loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc), nil
	}
	d, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return time.Time{}, apierror.Invalid(apierror.BadInput, "date", "Ngày không hợp lệ, định dạng YYYY-MM-DD")
	}
	return d, nil
}

func (s *statisticsService) dailySeries(rows []repository.SaleRow, from time.Time) []dto.SeriesPoint {
	points := make([]dto.SeriesPoint, 7)
	for i := range points {
		points[i] = dto.SeriesPoint{Label: from.AddDate(0, 0, i).Format("02/01"), Revenue: decimal.Zero}
	}
	for _, r := range rows {
		day := r.CreatedAt.In(s.loc)
		idx := int(time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc).Sub(from).Hours() / 24)
		if idx >= 0 && idx < len(points) {
			points[idx].Revenue = points[idx].Revenue.Add(rowRevenue(r))
		}
	}
	return points
}

func (s *statisticsService) monthlySeries(rows []repository.SaleRow) []dto.SeriesPoint {
	points := make([]dto.SeriesPoint, 12)
	for i := range points {
		points[i] = dto.SeriesPoint{Label: fmt.Sprintf("T%d", i+1), Revenue: decimal.Zero}
	}
	for _, r := range rows {
		m := int(r.CreatedAt.In(s.loc).Month()) - 1
		points[m].Revenue = points[m].Revenue.Add(rowRevenue(r))
	}
	return points
}

type summary struct {
	dto.StatisticsResponse
	topProducts []dto.ProductSales
}

// summarize folds rows into totals. Products are kept in first-seen order so
// that ties, both for best seller and top products, go to the earlier row.
func summarize(rows []repository.SaleRow) summary {
	var (
		out      summary
		products []dto.ProductSales
		index    = map[uint]int{}
	)
	out.Revenue = decimal.Zero
	out.Drink = dto.CategorySummary{Category: model.CategoryDrink, Revenue: decimal.Zero}
	out.Food = dto.CategorySummary{Category: model.CategoryFood, Revenue: decimal.Zero}

	for _, r := range rows {
		rev := rowRevenue(r)
		out.Revenue = out.Revenue.Add(rev)
		out.ItemsSold += r.Quantity

		switch r.Category {
		case model.CategoryDrink:
			out.Drink.ItemsSold += r.Quantity
			out.Drink.Revenue = out.Drink.Revenue.Add(rev)
		case model.CategoryFood:
			out.Food.ItemsSold += r.Quantity
			out.Food.Revenue = out.Food.Revenue.Add(rev)
		}

		i, ok := index[r.ProductID]
		if !ok {
			i = len(products)
			index[r.ProductID] = i
			products = append(products, dto.ProductSales{
				ProductID: r.ProductID,
				Name:      r.ProductName,
				Category:  r.Category,
				Revenue:   decimal.Zero,
			})
		}
		products[i].Quantity += r.Quantity
		products[i].Revenue = products[i].Revenue.Add(rev)
	}

	out.Drink.BestSeller = bestSeller(products, model.CategoryDrink)
	out.Food.BestSeller = bestSeller(products, model.CategoryFood)

	sorted := append([]dto.ProductSales(nil), products...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Quantity > sorted[b].Quantity })
	if len(sorted) > topProductsLimit {
		sorted = sorted[:topProductsLimit]
	}
	out.topProducts = sorted
	return out
}

func bestSeller(products []dto.ProductSales, category string) *dto.ProductSales {
	var best *dto.ProductSales
	for i := range products {
		p := products[i]
		if p.Category != category {
			continue
		}
		if best == nil || p.Quantity > best.Quantity {
			best = &p
		}
	}
	return best
}

func rowRevenue(r repository.SaleRow) decimal.Decimal {
	return r.Price.Mul(decimal.NewFromInt(int64(r.Quantity)))
}
