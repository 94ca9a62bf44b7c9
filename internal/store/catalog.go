package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/suyanik/Einkauflist/internal/model"
)

type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, name, slug, created_at`

func (s *CatalogStore) ListCategories() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	err := scanner.Scan(
		&p.ID, &p.NameTR, &p.NameDE, &p.NamePA, &p.Unit, &p.Image,
		&p.CategoryID, &p.LastPrice, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const productCols = `id, name_tr, name_de, name_pa, unit, image, category_id, last_price, created_at`

// ListCategoriesWithProducts returns every category with its products nested,
// products ordered by their Punjabi name.
func (s *CatalogStore) ListCategoriesWithProducts() ([]model.Category, error) {
	categories, err := s.ListCategories()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT ` + productCols + ` FROM products ORDER BY name_pa ASC`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[string][]model.Product)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		byCategory[p.CategoryID] = append(byCategory[p.CategoryID], *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range categories {
		if products, ok := byCategory[categories[i].ID]; ok {
			categories[i].Products = products
		} else {
			categories[i].Products = []model.Product{}
		}
	}
	return categories, nil
}

func (s *CatalogStore) GetProductByID(id string) (*model.Product, error) {
	row := s.db.QueryRow(`SELECT `+productCols+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *CatalogStore) CreateProduct(nameTR, nameDE, namePA, unit, image, categoryID string) (*model.Product, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO products (id, name_tr, name_de, name_pa, unit, image, category_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, nameTR, nameDE, namePA, unit, image, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return s.GetProductByID(id)
}
