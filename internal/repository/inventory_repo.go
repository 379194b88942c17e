package repository

import (
	"context"
	"strings"

	"cafebook/internal/model"

	"gorm.io/gorm"
)

type IngredientRepository interface {
	Create(ctx context.Context, i *model.Ingredient) error
	FindByID(ctx context.Context, id uint) (*model.Ingredient, error)
	List(ctx context.Context, search string) ([]model.Ingredient, error)
	Update(ctx context.Context, i *model.Ingredient) error
	Delete(ctx context.Context, id uint) error
	NameTaken(ctx context.Context, nameKey string, exceptID uint) (bool, error)
}

type ingredientRepo struct{ db *gorm.DB }

func NewIngredientRepository(db *gorm.DB) IngredientRepository { return &ingredientRepo{db: db} }

func (r *ingredientRepo) Create(ctx context.Context, i *model.Ingredient) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *ingredientRepo) FindByID(ctx context.Context, id uint) (*model.Ingredient, error) {
	var i model.Ingredient
	err := r.db.WithContext(ctx).First(&i, id).Error
	return &i, err
}

func (r *ingredientRepo) List(ctx context.Context, search string) ([]model.Ingredient, error) {
	var out []model.Ingredient
	q := r.db.WithContext(ctx)
	if search != "" {
		q = q.Where("name_key LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	err := q.Order("name").Find(&out).Error
	return out, err
}

func (r *ingredientRepo) Update(ctx context.Context, i *model.Ingredient) error {
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *ingredientRepo) Delete(ctx context.Context, id uint) error {
	return deleteByID(r.db.WithContext(ctx), &model.Ingredient{}, id)
}

func (r *ingredientRepo) NameTaken(ctx context.Context, nameKey string, exceptID uint) (bool, error) {
	return keyTaken(r.db.WithContext(ctx), &model.Ingredient{}, "name_key", nameKey, exceptID)
}

type BookRepository interface {
	Create(ctx context.Context, b *model.Book) error
	FindByID(ctx context.Context, id uint) (*model.Book, error)
	List(ctx context.Context, search string) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book, genres []model.Genre) error
	Delete(ctx context.Context, id uint) error
	TitleTaken(ctx context.Context, titleKey string, exceptID uint) (bool, error)

	CreateGenre(ctx context.Context, g *model.Genre) error
	FindGenres(ctx context.Context, ids []uint) ([]model.Genre, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)
	UpdateGenre(ctx context.Context, g *model.Genre) error
	DeleteGenre(ctx context.Context, id uint) error
	GenreNameTaken(ctx context.Context, nameKey string, exceptID uint) (bool, error)
}

type bookRepo struct{ db *gorm.DB }

func NewBookRepository(db *gorm.DB) BookRepository { return &bookRepo{db: db} }

func (r *bookRepo) Create(ctx context.Context, b *model.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *bookRepo) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	var b model.Book
	err := r.db.WithContext(ctx).Preload("Genres").First(&b, id).Error
	return &b, err
}

func (r *bookRepo) List(ctx context.Context, search string) ([]model.Book, error) {
	var out []model.Book
	q := r.db.WithContext(ctx).Preload("Genres")
	if search != "" {
		q = q.Where("title_key LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	err := q.Order("title").Find(&out).Error
	return out, err
}

// Update saves the book columns and replaces its genre links.
func (r *bookRepo) Update(ctx context.Context, b *model.Book, genres []model.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres").Save(b).Error; err != nil {
			return err
		}
		return tx.Model(b).Association("Genres").Replace(genres)
	})
}

func (r *bookRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Book{ID: id}).Association("Genres").Clear(); err != nil {
			return err
		}
		return deleteByID(tx, &model.Book{}, id)
	})
}

func (r *bookRepo) TitleTaken(ctx context.Context, titleKey string, exceptID uint) (bool, error) {
	return keyTaken(r.db.WithContext(ctx), &model.Book{}, "title_key", titleKey, exceptID)
}

func (r *bookRepo) CreateGenre(ctx context.Context, g *model.Genre) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *bookRepo) FindGenres(ctx context.Context, ids []uint) ([]model.Genre, error) {
	var out []model.Genre
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *bookRepo) ListGenres(ctx context.Context) ([]model.Genre, error) {
	var out []model.Genre
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (r *bookRepo) UpdateGenre(ctx context.Context, g *model.Genre) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *bookRepo) DeleteGenre(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_genres WHERE genre_id = ?", id).Error; err != nil {
			return err
		}
		return deleteByID(tx, &model.Genre{}, id)
	})
}

func (r *bookRepo) GenreNameTaken(ctx context.Context, nameKey string, exceptID uint) (bool, error) {
	return keyTaken(r.db.WithContext(ctx), &model.Genre{}, "name_key", nameKey, exceptID)
}

func deleteByID(db *gorm.DB, m interface{}, id uint) error {
	res := db.Delete(m, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func keyTaken(db *gorm.DB, m interface{}, column, key string, exceptID uint) (bool, error) {
	var n int64
	q := db.Model(m).Where(column+" = ?", key)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}
