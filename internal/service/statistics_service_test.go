package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"cafebook/internal/apierror"
	"cafebook/internal/dto"
	"cafebook/internal/model"
	"cafebook/internal/repository"
	"cafebook/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type statsFixture struct {
	db       *gorm.DB
	svc      StatisticsService
	employee *model.Employee
	latte    *model.Product
	tea      *model.Product
	cake     *model.Product
}

func newStatsFixture(t *testing.T) *statsFixture {
	t.Helper()
	db := testutil.NewDB(t)
	role := testutil.SeedRole(t, db, "cashier", "Thu ngân")
	return &statsFixture{
		db:       db,
		svc:      NewStatisticsService(repository.NewStatisticsRepository(db), time.UTC),
		employee: testutil.SeedEmployee(t, db, role.ID, "0903333333", "Lê Văn C", ""),
		latte:    testutil.SeedProduct(t, db, "Latte", model.CategoryDrink, 30000),
		tea:      testutil.SeedProduct(t, db, "Trà đào", model.CategoryDrink, 25000),
		cake:     testutil.SeedProduct(t, db, "Bánh flan", model.CategoryFood, 15000),
	}
}

// sell stores an invoice at the given time with one line per (product, qty) pair.
func (f *statsFixture) sell(t *testing.T, at time.Time, lines ...any) {
	t.Helper()
	inv := &model.Invoice{EmployeeID: f.employee.ID, CreatedAt: at.UTC(), LastLineNo: len(lines) / 2}
	require.NoError(t, f.db.Omit("Employee", "Lines").Create(inv).Error)
	for i := 0; i < len(lines); i += 2 {
		p := lines[i].(*model.Product)
		require.NoError(t, f.db.Omit("Product", "Voucher").Create(&model.InvoiceLine{
			InvoiceID: inv.ID,
			LineNo:    i/2 + 1,
			ProductID: p.ID,
			Quantity:  lines[i+1].(int),
		}).Error)
	}
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestReport_EmptyDay(t *testing.T) {
	f := newStatsFixture(t)

	r, err := f.svc.Report(context.Background(), dto.StatisticsQuery{Type: ReportDay, Date: "2024-05-02"})
	require.NoError(t, err)
	assert.Zero(t, r.InvoiceCount)
	assert.True(t, r.Revenue.IsZero())
	assert.Zero(t, r.ItemsSold)
	assert.Nil(t, r.Drink.BestSeller)
	assert.Nil(t, r.Food.BestSeller)
	assert.Empty(t, r.Series)
}

func TestReport_Day(t *testing.T) {
	f := newStatsFixture(t)
	f.sell(t, day(2024, 5, 2, 8), f.latte, 2, f.cake, 1)
	f.sell(t, day(2024, 5, 2, 15), f.tea, 3)
	f.sell(t, day(2024, 5, 3, 1), f.latte, 10) // next day

	r, err := f.svc.Report(context.Background(), dto.StatisticsQuery{Type: ReportDay, Date: "2024-05-02"})
	require.NoError(t, err)

	assert.EqualValues(t, 2, r.InvoiceCount)
	assert.Equal(t, 6, r.ItemsSold)
	// 2*30000 + 15000 + 3*25000
	assert.True(t, decimal.NewFromInt(150000).Equal(r.Revenue), r.Revenue.String())
	assert.Equal(t, 5, r.Drink.ItemsSold)
	assert.Equal(t, 1, r.Food.ItemsSold)

	require.NotNil(t, r.Drink.BestSeller)
	assert.Equal(t, "Trà đào", r.Drink.BestSeller.Name)
	require.NotNil(t, r.Food.BestSeller)
	assert.Equal(t, f.cake.ID, r.Food.BestSeller.ProductID)
}

func TestReport_BestSellerTieGoesToFirstSeen(t *testing.T) {
	f := newStatsFixture(t)
	f.sell(t, day(2024, 5, 2, 8), f.tea, 2)
	f.sell(t, day(2024, 5, 2, 9), f.latte, 2)

	r, err := f.svc.Report(context.Background(), dto.StatisticsQuery{Type: ReportDay, Date: "2024-05-02"})
	require.NoError(t, err)
	require.NotNil(t, r.Drink.BestSeller)
	assert.Equal(t, f.tea.ID, r.Drink.BestSeller.ProductID)
}

func TestReport_VouchersDoNotReduceRevenue(t *testing.T) {
	f := newStatsFixture(t)
	v := &model.Voucher{Name: "Giảm 50%", Category: model.CategoryDrink, Percent: 50,
		StartsAt: day(2024, 1, 1, 0), EndsAt: day(2025, 1, 1, 0)}
	require.NoError(t, f.db.Create(v).Error)
	inv := &model.Invoice{EmployeeID: f.employee.ID, CreatedAt: day(2024, 5, 2, 8), LastLineNo: 1}
	require.NoError(t, f.db.Omit("Employee", "Lines").Create(inv).Error)
	require.NoError(t, f.db.Omit("Product", "Voucher").Create(&model.InvoiceLine{
		InvoiceID: inv.ID, LineNo: 1, ProductID: f.latte.ID, Quantity: 1, VoucherID: &v.ID,
	}).Error)

	r, err := f.svc.Report(context.Background(), dto.StatisticsQuery{Type: ReportDay, Date: "2024-05-02"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30000).Equal(r.Revenue), r.Revenue.String())
}

func TestReport_WeekRunsMondayToSunday(t *testing.T) {
	f := newStatsFixture(t)
	// 2024-05-06 is a Monday
	f.sell(t, day(2024, 5, 5, 12), f.latte, 1) // previous Sunday
	f.sell(t, day(2024, 5, 6, 9), f.latte, 1)
	f.sell(t, day(2024, 5, 8, 9), f.tea, 2)
	f.sell(t, day(2024, 5, 12, 20), f.cake, 4)
	f.sell(t, day(2024, 5, 13, 0), f.cake, 1) // next Monday

	r, err := f.svc.Report(context.Background(), dto.StatisticsQuery{Type: ReportWeek, Date: "2024-05-09"})
	require.NoError(t, err)

	assert.Equal(t, day(2024, 5, 6, 0), r.From)
	assert.Equal(t, day(2024, 5, 13, 0), r.To)
	assert.EqualValues(t, 3, r.InvoiceCount)

	require.Len(t, r.Series, 7)
	assert.Equal(t, "06/05", r.Series[0].Label)
	assert.Equal(t, "12/05", r.Series[6].Label)
	assert.True(t, decimal.NewFromInt(30000).Equal(r.Series[0].Revenue))
	assert.True(t, r.Series[1].Revenue.IsZero())
	assert.True(t, decimal.NewFromInt(50000).Equal(r.Series[2].Revenue))
	assert.True(t, decimal.NewFromInt(60000).Equal(r.Series[6].Revenue))

	require.Len(t, r.TopProducts, 3)
	assert.Equal(t, f.cake.ID, r.TopProducts[0].ProductID)
	assert.Equal(t, f.tea.ID, r.TopProducts[1].ProductID)
	assert.Equal(t, f.latte.ID, r.TopProducts[2].ProductID)
}

func TestReport_MonthWithYearlySeries(t *testing.T) {
	f := newStatsFixture(t)
	f.sell(t, day(2024, 2, 10, 9), f.latte, 1)
	f.sell(t, day(2024, 3, 1, 9), f.tea, 2)
	f.sell(t, day(2024, 3, 31, 22), f.cake, 1)
	f.sell(t, day(2023, 3, 15, 9), f.latte, 9) // other year

	r, err := f.svc.Report(context.Background(), dto.StatisticsQuery{Type: ReportMonth, Date: "2024-03-18"})
	require.NoError(t, err)

	assert.Equal(t, day(2024, 3, 1, 0), r.From)
	assert.Equal(t, day(2024, 4, 1, 0), r.To)
	assert.EqualValues(t, 2, r.InvoiceCount)
	assert.True(t, decimal.NewFromInt(65000).Equal(r.Revenue), r.Revenue.String())

	require.Len(t, r.Series, 12)
	assert.Equal(t, "T1", r.Series[0].Label)
	assert.Equal(t, "T12", r.Series[11].Label)
	assert.True(t, decimal.NewFromInt(30000).Equal(r.Series[1].Revenue))
	assert.True(t, decimal.NewFromInt(65000).Equal(r.Series[2].Revenue))
	assert.True(t, r.Series[3].Revenue.IsZero())
}

func TestReport_TopProductsCappedAtFive(t *testing.T) {
	f := newStatsFixture(t)
	var lines []any
	for i := 0; i < 7; i++ {
		p := testutil.SeedProduct(t, f.db, "Món "+string(rune('A'+i)), model.CategoryFood, 10000)
		lines = append(lines, p, i+1)
	}
	f.sell(t, day(2024, 5, 7, 9), lines...)

	r, err := f.svc.Report(context.Background(), dto.StatisticsQuery{Type: ReportWeek, Date: "2024-05-07"})
	require.NoError(t, err)
	require.Len(t, r.TopProducts, 5)
	assert.Equal(t, 7, r.TopProducts[0].Quantity)
	assert.Equal(t, 3, r.TopProducts[4].Quantity)
}

func TestReport_RejectsBadInput(t *testing.T) {
	f := newStatsFixture(t)
	ctx := context.Background()
	var ve *apierror.ValidationError

	_, err := f.svc.Report(ctx, dto.StatisticsQuery{Type: "year", Date: "2024-05-02"})
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.Report(ctx, dto.StatisticsQuery{Type: ReportDay, Date: "02-05-2024"})
	assert.True(t, errors.As(err, &ve))
}

func TestReport_DefaultsToToday(t *testing.T) {
	f := newStatsFixture(t)
	f.svc.(*statisticsService).now = func() time.Time { return day(2024, 5, 2, 17) }
	f.sell(t, day(2024, 5, 2, 8), f.latte, 1)

	r, err := f.svc.Report(context.Background(), dto.StatisticsQuery{Type: ReportDay})
	require.NoError(t, err)
	assert.EqualValues(t, 1, r.InvoiceCount)
}

func TestExport_ProducesWorkbook(t *testing.T) {
	f := newStatsFixture(t)
	f.sell(t, day(2024, 5, 8, 9), f.tea, 2)

	data, err := f.svc.Export(context.Background(), dto.StatisticsQuery{Type: ReportWeek, Date: "2024-05-08"})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()
	assert.Contains(t, wb.GetSheetList(), "Tong quan")
}
