package service

import (
	"context"
	"regexp"
	"strings"

	"cafebook/internal/apierror"
	"cafebook/internal/dto"
	"cafebook/internal/model"
	"cafebook/internal/repository"

	"github.com/shopspring/decimal"
)

// Catalog names: letters, digits, whitespace and . , -
var namePattern = regexp.MustCompile(`^[\p{L}\p{N}\s.,\-]+$`)

func normalizeName(field, name string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || !namePattern.MatchString(name) {
		return "", "", apierror.Invalid(apierror.InvalidCharacters, field,
			"Tên chỉ được chứa chữ, số, khoảng trắng và các ký tự . , -")
	}
	return name, strings.ToLower(name), nil
}

// ─── Ingredients ─────────────────────────────────────────────────────────────

type IngredientService interface {
	Create(ctx context.Context, req dto.IngredientRequest) (*dto.IngredientResponse, error)
	Get(ctx context.Context, id uint) (*dto.IngredientResponse, error)
	List(ctx context.Context, search string) ([]dto.IngredientResponse, error)
	Update(ctx context.Context, id uint, req dto.IngredientRequest) (*dto.IngredientResponse, error)
	Delete(ctx context.Context, id uint) error
}

type ingredientService struct {
	repo repository.IngredientRepository
}

func NewIngredientService(repo repository.IngredientRepository) IngredientService {
	return &ingredientService{repo: repo}
}

func (s *ingredientService) validate(ctx context.Context, id uint, req dto.IngredientRequest) (name, key string, err error) {
	if name, key, err = normalizeName("name", req.Name); err != nil {
		return "", "", err
	}
	if req.Quantity.LessThan(decimal.Zero) {
		return "", "", apierror.Invalid(apierror.NegativeQuantity, "quantity", "Số lượng không được âm")
	}
	if req.ImportPrice < 0 {
		return "", "", apierror.Invalid(apierror.NegativeQuantity, "import_price", "Giá nhập không được âm")
	}
	taken, err := s.repo.NameTaken(ctx, key, id)
	if err != nil {
		return "", "", err
	}
	if taken {
		return "", "", apierror.Invalid(apierror.DuplicateName, "name", "Tên nguyên liệu đã tồn tại")
	}
	return name, key, nil
}

func (s *ingredientService) Create(ctx context.Context, req dto.IngredientRequest) (*dto.IngredientResponse, error) {
	name, key, err := s.validate(ctx, 0, req)
	if err != nil {
		return nil, err
	}
	ing := &model.Ingredient{Name: name, NameKey: key, Quantity: req.Quantity, Unit: unitOrDefault(req.Unit), ImportPrice: req.ImportPrice}
	if err := s.repo.Create(ctx, ing); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Invalid(apierror.DuplicateName, "name", "Tên nguyên liệu đã tồn tại")
		}
		return nil, err
	}
	resp := toIngredientResponse(ing)
	return &resp, nil
}

func (s *ingredientService) Get(ctx context.Context, id uint) (*dto.IngredientResponse, error) {
	ing, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityIngredient, id)
	}
	if err != nil {
		return nil, err
	}
	resp := toIngredientResponse(ing)
	return &resp, nil
}

func (s *ingredientService) List(ctx context.Context, search string) ([]dto.IngredientResponse, error) {
	items, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.IngredientResponse, len(items))
	for i := range items {
		out[i] = toIngredientResponse(&items[i])
	}
	return out, nil
}

func (s *ingredientService) Update(ctx context.Context, id uint, req dto.IngredientRequest) (*dto.IngredientResponse, error) {
	ing, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityIngredient, id)
	}
	if err != nil {
		return nil, err
	}
	name, key, err := s.validate(ctx, id, req)
	if err != nil {
		return nil, err
	}
	ing.Name, ing.NameKey = name, key
	ing.Quantity = req.Quantity
	ing.Unit = unitOrDefault(req.Unit)
	ing.ImportPrice = req.ImportPrice
	if err := s.repo.Update(ctx, ing); err != nil {
		return nil, err
	}
	resp := toIngredientResponse(ing)
	return &resp, nil
}

func (s *ingredientService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if repository.IsNotFound(err) {
		return apierror.NotFound(apierror.EntityIngredient, id)
	}
	return err
}

func unitOrDefault(u string) string {
	if u == "" {
		return "kg"
	}
	return u
}

func toIngredientResponse(i *model.Ingredient) dto.IngredientResponse {
	return dto.IngredientResponse{ID: i.ID, Name: i.Name, Quantity: i.Quantity, Unit: i.Unit, ImportPrice: i.ImportPrice}
}

// ─── Books & genres ──────────────────────────────────────────────────────────

type BookService interface {
	Create(ctx context.Context, req dto.BookRequest) (*dto.BookResponse, error)
	Get(ctx context.Context, id uint) (*dto.BookResponse, error)
	List(ctx context.Context, search string) ([]dto.BookResponse, error)
	Update(ctx context.Context, id uint, req dto.BookRequest) (*dto.BookResponse, error)
	Delete(ctx context.Context, id uint) error

	CreateGenre(ctx context.Context, req dto.GenreRequest) (*dto.GenreResponse, error)
	ListGenres(ctx context.Context) ([]dto.GenreResponse, error)
	UpdateGenre(ctx context.Context, id uint, req dto.GenreRequest) (*dto.GenreResponse, error)
	DeleteGenre(ctx context.Context, id uint) error
}

type bookService struct {
	repo repository.BookRepository
}

func NewBookService(repo repository.BookRepository) BookService {
	return &bookService{repo: repo}
}

func (s *bookService) validate(ctx context.Context, id uint, req dto.BookRequest) (title, key string, genres []model.Genre, err error) {
	if title, key, err = normalizeName("title", req.Title); err != nil {
		return
	}
	if req.Quantity < 0 {
		err = apierror.Invalid(apierror.NegativeQuantity, "quantity", "Số lượng không được âm")
		return
	}
	taken, err := s.repo.TitleTaken(ctx, key, id)
	if err != nil {
		return
	}
	if taken {
		err = apierror.Invalid(apierror.DuplicateName, "title", "Tên sách đã tồn tại")
		return
	}
	genres, err = s.repo.FindGenres(ctx, req.GenreIDs)
	if err != nil {
		return
	}
	if len(genres) != len(uniqueIDs(req.GenreIDs)) {
		found := make(map[uint]bool, len(genres))
		for _, g := range genres {
			found[g.ID] = true
		}
		for _, gid := range req.GenreIDs {
			if !found[gid] {
				err = apierror.NotFound(apierror.EntityGenre, gid)
				return
			}
		}
	}
	return
}

func (s *bookService) Create(ctx context.Context, req dto.BookRequest) (*dto.BookResponse, error) {
	title, key, genres, err := s.validate(ctx, 0, req)
	if err != nil {
		return nil, err
	}
	b := &model.Book{Title: title, TitleKey: key, Author: req.Author, Quantity: req.Quantity, Genres: genres}
	if err := s.repo.Create(ctx, b); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Invalid(apierror.DuplicateName, "title", "Tên sách đã tồn tại")
		}
		return nil, err
	}
	resp := toBookResponse(b)
	return &resp, nil
}

func (s *bookService) Get(ctx context.Context, id uint) (*dto.BookResponse, error) {
	b, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityBook, id)
	}
	if err != nil {
		return nil, err
	}
	resp := toBookResponse(b)
	return &resp, nil
}

func (s *bookService) List(ctx context.Context, search string) ([]dto.BookResponse, error) {
	books, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BookResponse, len(books))
	for i := range books {
		out[i] = toBookResponse(&books[i])
	}
	return out, nil
}

func (s *bookService) Update(ctx context.Context, id uint, req dto.BookRequest) (*dto.BookResponse, error) {
	b, err := s.repo.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, apierror.NotFound(apierror.EntityBook, id)
	}
	if err != nil {
		return nil, err
	}
	title, key, genres, err := s.validate(ctx, id, req)
	if err != nil {
		return nil, err
	}
	b.Title, b.TitleKey = title, key
	b.Author = req.Author
	b.Quantity = req.Quantity
	if err := s.repo.Update(ctx, b, genres); err != nil {
		return nil, err
	}
	b.Genres = genres
	resp := toBookResponse(b)
	return &resp, nil
}

func (s *bookService) Delete(ctx context.Context, id uint) error {
	err := s.repo.Delete(ctx, id)
	if repository.IsNotFound(err) {
		return apierror.NotFound(apierror.EntityBook, id)
	}
	return err
}

func (s *bookService) CreateGenre(ctx context.Context, req dto.GenreRequest) (*dto.GenreResponse, error) {
	name, key, err := s.validateGenre(ctx, 0, req)
	if err != nil {
		return nil, err
	}
	g := &model.Genre{Name: name, NameKey: key}
	if err := s.repo.CreateGenre(ctx, g); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Invalid(apierror.DuplicateName, "name", "Tên thể loại đã tồn tại")
		}
		return nil, err
	}
	return &dto.GenreResponse{ID: g.ID, Name: g.Name}, nil
}

func (s *bookService) ListGenres(ctx context.Context) ([]dto.GenreResponse, error) {
	genres, err := s.repo.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GenreResponse, len(genres))
	for i, g := range genres {
		out[i] = dto.GenreResponse{ID: g.ID, Name: g.Name}
	}
	return out, nil
}

func (s *bookService) UpdateGenre(ctx context.Context, id uint, req dto.GenreRequest) (*dto.GenreResponse, error) {
	genres, err := s.repo.FindGenres(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(genres) == 0 {
		return nil, apierror.NotFound(apierror.EntityGenre, id)
	}
	name, key, err := s.validateGenre(ctx, id, req)
	if err != nil {
		return nil, err
	}
	g := genres[0]
	g.Name, g.NameKey = name, key
	if err := s.repo.UpdateGenre(ctx, &g); err != nil {
		return nil, err
	}
	return &dto.GenreResponse{ID: g.ID, Name: g.Name}, nil
}

func (s *bookService) DeleteGenre(ctx context.Context, id uint) error {
	err := s.repo.DeleteGenre(ctx, id)
	if repository.IsNotFound(err) {
		return apierror.NotFound(apierror.EntityGenre, id)
	}
	return err
}

func (s *bookService) validateGenre(ctx context.Context, id uint, req dto.GenreRequest) (string, string, error) {
	name, key, err := normalizeName("name", req.Name)
	if err != nil {
		return "", "", err
	}
	taken, err := s.repo.GenreNameTaken(ctx, key, id)
	if err != nil {
		return "", "", err
	}
	if taken {
		return "", "", apierror.Invalid(apierror.DuplicateName, "name", "Tên thể loại đã tồn tại")
	}
	return name, key, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	out := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func toBookResponse(b *model.Book) dto.BookResponse {
	genres := make([]dto.GenreResponse, len(b.Genres))
	for i, g := range b.Genres {
		genres[i] = dto.GenreResponse{ID: g.ID, Name: g.Name}
	}
	return dto.BookResponse{ID: b.ID, Title: b.Title, Author: b.Author, Quantity: b.Quantity, Genres: genres}
}
