package service

import (
	"context"

	"cafebook/internal/apierror"
	"cafebook/internal/dto"
	"cafebook/internal/model"
	"cafebook/internal/repository"
)

type VoucherService interface {
	Create(ctx context.Context, req dto.VoucherRequest) (*dto.VoucherResponse, error)
	Get(ctx context.Context, id uint) (*dto.VoucherResponse, error)
	List(ctx context.Context, category string) ([]dto.VoucherResponse, error)
	Update(ctx context.Context, id uint, req dto.VoucherRequest) (*dto.VoucherResponse, error)
	Delete(ctx context.Context, id uint) error
}

type voucherService struct {
	repo repository.VoucherRepository
}

func NewVoucherService(repo repository.VoucherRepository) VoucherService {
	return &voucherService{repo: repo}
}

func validateVoucher(req dto.VoucherRequest) error {
	if req.Percent <= 0 || req.Percent > 100 {
		return apierror.Invalid(apierror.BadPercentage, "percent", "Phần trăm giảm giá phải trong khoảng (0, 100]")
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return apierror.Invalid(apierror.BadDateRange, "ends_at", "Ngày bắt đầu phải trước ngày kết thúc")
	}
	return nil
}

func (s *voucherService) Create(ctx context.Context, req dto.VoucherRequest) (*dto.VoucherResponse, error) {
	if err := validateVoucher(req); err != nil {
		return nil, err
	}
	v := &model.Voucher{
		Name:     req.Name,
		Category: req.Category,
		Percent:  req.Percent,
		StartsAt: req.StartsAt.UTC(),
		EndsAt:   req.EndsAt.UTC(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Invalid(apierror.DuplicateName, "name", "Tên voucher đã tồn tại")
		}
		return nil, err
	}
	resp := toVoucherResponse(v)
	return &resp, nil
}

func (s *voucherService) Get(ctx context.Context, id uint) (*dto.VoucherResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityVoucher, id)
	}
	if err != nil {
		return nil, err
	}
	resp := toVoucherResponse(v)
	return &resp, nil
}

func (s *voucherService) List(ctx context.Context, category string) ([]dto.VoucherResponse, error) {
	vouchers, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VoucherResponse, len(vouchers))
	for i := range vouchers {
		out[i] = toVoucherResponse(&vouchers[i])
	}
	return out, nil
}

func (s *voucherService) Update(ctx context.Context, id uint, req dto.VoucherRequest) (*dto.VoucherResponse, error) {
	if err := validateVoucher(req); err != nil {
		return nil, err
	}
	v, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityVoucher, id)
	}
	if err != nil {
		return nil, err
	}
	v.Name = req.Name
	v.Category = req.Category
	v.Percent = req.Percent
	v.StartsAt = req.StartsAt.UTC()
	v.EndsAt = req.EndsAt.UTC()
	if err := s.repo.Update(ctx, v); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Invalid(apierror.DuplicateName, "name", "Tên voucher đã tồn tại")
		}
		return nil, err
	}
	resp := toVoucherResponse(v)
	return &resp, nil
}

func (s *voucherService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if repository.IsNotFound(err) {
		return apierror.NotFound(apierror.EntityVoucher, id)
	}
	return err
}

func toVoucherResponse(v *model.Voucher) dto.VoucherResponse {
	return dto.VoucherResponse{
		ID:       v.ID,
		Name:     v.Name,
		Category: v.Category,
		Percent:  v.Percent,
		StartsAt: v.StartsAt,
		EndsAt:   v.EndsAt,
	}
}
