package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cafebook/internal/apierror"
	"cafebook/internal/auth"
	"cafebook/internal/dto"
	"cafebook/internal/infra"
	"cafebook/internal/model"
	"cafebook/internal/repository"
	"cafebook/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationReason(t *testing.T, err error) apierror.ValidationReason {
	t.Helper()
	var ve *apierror.ValidationError
	require.True(t, errors.As(err, &ve), "want ValidationError, got %v", err)
	return ve.Reason
}

func TestProductService_CacheInvalidatedOnWrite(t *testing.T) {
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := NewProductService(repository.NewProductRepository(db), repository.NewPriceHistoryRepository(db), infra.NewJSONCache(rdb, "product:", time.Minute))
	ctx := context.Background()

	p, err := svc.Create(ctx, dto.CreateProductRequest{Name: "Bạc xỉu", Price: decimal.NewFromInt(29000), Category: model.CategoryDrink})
	require.NoError(t, err)
	assert.True(t, p.Active)

	_, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("product:1"))

	price := decimal.NewFromInt(32000)
	_, err = svc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.False(t, mr.Exists("product:1"))

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, price.Equal(got.Price))

	require.NoError(t, svc.Deactivate(ctx, p.ID))
	got, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestProductService_PriceHistory(t *testing.T) {
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := NewProductService(repository.NewProductRepository(db), repository.NewPriceHistoryRepository(db), infra.NewJSONCache(rdb, "product:", time.Minute))

	role := testutil.SeedRole(t, db, "manager", "Quản lý")
	manager := testutil.SeedEmployee(t, db, role.ID, "0901000001", "Trần Quản Lý", "")
	ctx := auth.WithIdentity(context.Background(), &auth.Claims{EmployeeID: manager.ID, RoleID: role.ID})

	p, err := svc.Create(ctx, dto.CreateProductRequest{Name: "Cà phê muối", Price: decimal.NewFromInt(30000), Category: model.CategoryDrink})
	require.NoError(t, err)

	// A rename alone is not a price change.
	name := "Cà phê muối Huế"
	_, err = svc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)

	for _, v := range []int64{32000, 35000} {
		price := decimal.NewFromInt(v)
		_, err = svc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &price})
		require.NoError(t, err)
	}

	hist, err := svc.PriceHistory(ctx, p.ID, dto.PriceHistoryFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	require.EqualValues(t, 2, hist.Total)
	require.Len(t, hist.Data, 2)
	assert.Equal(t, "32000", hist.Data[0].PriceBefore.String())
	assert.Equal(t, "35000", hist.Data[0].PriceAfter.String())
	assert.Equal(t, "30000", hist.Data[1].PriceBefore.String())
	require.NotNil(t, hist.Data[0].ChangedByName)
	assert.Equal(t, "Trần Quản Lý", *hist.Data[0].ChangedByName)

	_, err = svc.PriceHistory(ctx, 404, dto.PriceHistoryFilter{Page: 1, Limit: 50})
	assert.True(t, apierror.IsNotFound(err, apierror.EntityProduct))
}

func TestProductService_Validation(t *testing.T) {
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := NewProductService(repository.NewProductRepository(db), repository.NewPriceHistoryRepository(db), infra.NewJSONCache(rdb, "product:", time.Minute))
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateProductRequest{Name: "Âm", Price: decimal.NewFromInt(-1), Category: model.CategoryFood})
	assert.Equal(t, apierror.NegativeQuantity, validationReason(t, err))

	_, err = svc.Create(ctx, dto.CreateProductRequest{Name: "Trà sữa", Price: decimal.NewFromInt(1), Category: model.CategoryDrink})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.CreateProductRequest{Name: "Trà sữa", Price: decimal.NewFromInt(2), Category: model.CategoryDrink})
	assert.Equal(t, apierror.DuplicateName, validationReason(t, err))

	_, err = svc.Get(ctx, 404)
	assert.True(t, apierror.IsNotFound(err, apierror.EntityProduct))
}

func TestVoucherService(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewVoucherService(repository.NewVoucherRepository(db))
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	req := dto.VoucherRequest{Name: "Hè", Category: model.CategoryDrink, Percent: 20, StartsAt: start, EndsAt: start.AddDate(0, 1, 0)}
	v, err := svc.Create(ctx, req)
	require.NoError(t, err)

	for _, pct := range []int{0, -5, 101} {
		bad := req
		bad.Name, bad.Percent = "khác", pct
		_, err = svc.Create(ctx, bad)
		assert.Equal(t, apierror.BadPercentage, validationReason(t, err), "percent %d", pct)
	}

	full := req
	full.Name, full.Percent = "Miễn phí", 100
	_, err = svc.Create(ctx, full)
	assert.NoError(t, err)

	backwards := req
	backwards.Name, backwards.EndsAt = "Ngược", start
	_, err = svc.Create(ctx, backwards)
	assert.Equal(t, apierror.BadDateRange, validationReason(t, err))

	_, err = svc.Create(ctx, req)
	assert.Equal(t, apierror.DuplicateName, validationReason(t, err))

	list, err := svc.List(ctx, model.CategoryDrink)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.Delete(ctx, v.ID))
	err = svc.Delete(ctx, v.ID)
	assert.True(t, apierror.IsNotFound(err, apierror.EntityVoucher))
}

func TestIngredientService(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewIngredientService(repository.NewIngredientRepository(db))
	ctx := context.Background()

	ing, err := svc.Create(ctx, dto.IngredientRequest{Name: "Sữa đặc", Quantity: decimal.NewFromFloat(2.5), ImportPrice: 45000})
	require.NoError(t, err)
	assert.Equal(t, "kg", ing.Unit)

	_, err = svc.Create(ctx, dto.IngredientRequest{Name: "SỮA ĐẶC", Quantity: decimal.NewFromInt(1)})
	assert.Equal(t, apierror.DuplicateName, validationReason(t, err))

	_, err = svc.Create(ctx, dto.IngredientRequest{Name: "Đường; DROP", Quantity: decimal.NewFromInt(1)})
	assert.Equal(t, apierror.InvalidCharacters, validationReason(t, err))

	_, err = svc.Create(ctx, dto.IngredientRequest{Name: "Đường", Quantity: decimal.NewFromInt(-1)})
	assert.Equal(t, apierror.NegativeQuantity, validationReason(t, err))

	// renaming to its own name in another case is allowed
	updated, err := svc.Update(ctx, ing.ID, dto.IngredientRequest{Name: "sữa đặc", Quantity: decimal.NewFromInt(3), Unit: "lon"})
	require.NoError(t, err)
	assert.Equal(t, "lon", updated.Unit)

	list, err := svc.List(ctx, "SỮA")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, ing.ID))
	_, err = svc.Get(ctx, ing.ID)
	assert.True(t, apierror.IsNotFound(err, apierror.EntityIngredient))
}

func TestBookService(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewBookService(repository.NewBookRepository(db))
	ctx := context.Background()

	novel, err := svc.CreateGenre(ctx, dto.GenreRequest{Name: "Tiểu thuyết"})
	require.NoError(t, err)
	poetry, err := svc.CreateGenre(ctx, dto.GenreRequest{Name: "Thơ"})
	require.NoError(t, err)
	_, err = svc.CreateGenre(ctx, dto.GenreRequest{Name: "thơ"})
	assert.Equal(t, apierror.DuplicateName, validationReason(t, err))

	author := "Nguyễn Du"
	book, err := svc.Create(ctx, dto.BookRequest{Title: "Truyện Kiều", Author: &author, Quantity: 3, GenreIDs: []uint{poetry.ID}})
	require.NoError(t, err)
	require.Len(t, book.Genres, 1)

	_, err = svc.Create(ctx, dto.BookRequest{Title: "truyện kiều", Quantity: 1})
	assert.Equal(t, apierror.DuplicateName, validationReason(t, err))

	_, err = svc.Create(ctx, dto.BookRequest{Title: "Số đỏ", Quantity: -2})
	assert.Equal(t, apierror.NegativeQuantity, validationReason(t, err))

	_, err = svc.Create(ctx, dto.BookRequest{Title: "Số đỏ", GenreIDs: []uint{99}})
	assert.True(t, apierror.IsNotFound(err, apierror.EntityGenre))

	updated, err := svc.Update(ctx, book.ID, dto.BookRequest{Title: "Truyện Kiều", Author: &author, Quantity: 5, GenreIDs: []uint{poetry.ID, novel.ID}})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	got, err := svc.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, got.Genres, 2)

	require.NoError(t, svc.DeleteGenre(ctx, novel.ID))
	got, err = svc.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, got.Genres, 1)

	require.NoError(t, svc.Delete(ctx, book.ID))
	_, err = svc.Get(ctx, book.ID)
	assert.True(t, apierror.IsNotFound(err, apierror.EntityBook))
}
