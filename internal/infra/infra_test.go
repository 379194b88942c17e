package infra

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cafebook/internal/dto"
	"cafebook/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// ── Circuit breaker ──────────────────────────────────────────────────────────

func TestBreaker_OpensAndRecovers(t *testing.T) {
	clock := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{Name: "smtp", FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	b.now = func() time.Time { return clock }

	boom := errors.New("relay down")
	assert.ErrorIs(t, b.Execute(func() error { return boom }), boom)
	assert.Equal(t, BreakerClosed, b.State())
	assert.ErrorIs(t, b.Execute(func() error { return boom }), boom)
	assert.Equal(t, BreakerOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clock = clock.Add(time.Minute)
	assert.Equal(t, BreakerHalfOpen, b.State())
	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, BreakerClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	b.now = func() time.Time { return clock }

	_ = b.Execute(func() error { return errors.New("x") })
	clock = clock.Add(time.Second)
	require.Equal(t, BreakerHalfOpen, b.State())

	_ = b.Execute(func() error { return errors.New("still down") })
	assert.Equal(t, BreakerOpen, b.State())
}

// ── OTP store ────────────────────────────────────────────────────────────────

func TestOTPStore(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewOTPStore(rdb, 5*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "0901111111", "A@Example.com")
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.True(t, mr.Exists("otp:0901111111:a@example.com"))

	ok, err := store.Check(ctx, "0901111111", "a@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Check(ctx, "0901111111", "a@example.com", "xxxxxx")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Consume(ctx, "0901111111", "a@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(ctx, "0901111111", "a@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok, "code is single use")
}

func TestOTPStore_Expires(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewOTPStore(rdb, 5*time.Minute)
	ctx := context.Background()

	code, err := store.Issue(ctx, "0901111111", "a@example.com")
	require.NoError(t, err)
	mr.FastForward(5*time.Minute + time.Second)

	ok, err := store.Check(ctx, "0901111111", "a@example.com", code)
	require.NoError(t, err)
	assert.False(t, ok)
}

// ── JSON cache ───────────────────────────────────────────────────────────────

func TestJSONCache(t *testing.T) {
	mr, rdb := newRedis(t)
	cache := NewJSONCache(rdb, "product:", time.Minute)
	ctx := context.Background()

	type item struct {
		Name  string `json:"name"`
		Price int    `json:"price"`
	}
	var got item
	hit, err := cache.Get(ctx, "7", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "7", item{Name: "Bạc xỉu", Price: 29000}))
	assert.Equal(t, time.Minute, mr.TTL("product:7"))

	hit, err = cache.Get(ctx, "7", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, item{Name: "Bạc xỉu", Price: 29000}, got)

	require.NoError(t, cache.Delete(ctx, "7"))
	assert.False(t, mr.Exists("product:7"))
}

// ── Documents ────────────────────────────────────────────────────────────────

func sampleInvoice() *model.Invoice {
	voucher := &model.Voucher{ID: 1, Name: "Giảm 10", Percent: 10}
	return &model.Invoice{
		ID:        12,
		CreatedAt: time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC),
		Employee:  model.Employee{Name: "Nguyễn Văn A"},
		Lines: []model.InvoiceLine{
			{LineNo: 1, Quantity: 2, Product: model.Product{Name: "Cà phê sữa đá", Price: decimal.NewFromInt(25000)}},
			{LineNo: 2, Quantity: 1, Product: model.Product{Name: "Bánh mì", Price: decimal.NewFromInt(20000)}, Voucher: voucher},
		},
	}
}

func TestWriteInvoicePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInvoicePDF(sampleInvoice(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestSaveInvoicePDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	path, err := SaveInvoicePDF(sampleInvoice(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "invoice_12.pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestStatisticsWorkbook(t *testing.T) {
	report := &dto.StatisticsResponse{
		Type:         "week",
		From:         time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC),
		To:           time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC),
		InvoiceCount: 3,
		Revenue:      decimal.NewFromInt(95000),
		ItemsSold:    4,
		Drink:        dto.CategorySummary{Category: model.CategoryDrink, ItemsSold: 3, Revenue: decimal.NewFromInt(75000)},
		Food:         dto.CategorySummary{Category: model.CategoryFood, ItemsSold: 1, Revenue: decimal.NewFromInt(20000)},
		Series: []dto.SeriesPoint{
			{Label: "29/04", Revenue: decimal.NewFromInt(95000)},
		},
		TopProducts: []dto.ProductSales{
			{ProductID: 1, Name: "Cà phê sữa đá", Category: model.CategoryDrink, Quantity: 3, Revenue: decimal.NewFromInt(75000)},
		},
	}
	data, err := StatisticsWorkbook(report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.ElementsMatch(t, []string{"Tong quan", "Doanh thu", "Top san pham"}, f.GetSheetList())

	v, err := f.GetCellValue("Tong quan", "B2")
	require.NoError(t, err)
	assert.Equal(t, "week", v)
}

// ── AMQP ─────────────────────────────────────────────────────────────────────

// Requires a broker; set AMQP_TEST_URL to run.
func TestAMQPPublisher(t *testing.T) {
	url := os.Getenv("AMQP_TEST_URL")
	if url == "" {
		t.Skip("AMQP_TEST_URL not set")
	}
	p, err := NewAMQPPublisher(url)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Publish(context.Background(), "invoice.created", map[string]uint{"invoice_id": 1}))
}
