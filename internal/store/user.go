package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/suyanik/Einkauflist/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Name, &u.Phone, &u.Role, &u.PIN, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, name, phone, role, pin, created_at`

func (s *UserStore) Create(name, phone, role, pin string) (*model.User, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO users (id, name, phone, role, pin) VALUES (?, ?, ?, ?, ?)`,
		id, name, phone, role, pin,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByPIN returns the first user whose PIN matches, in creation order.
// PINs are not unique; first match wins.
func (s *UserStore) GetByPIN(pin string) (*model.User, error) {
	row := s.db.QueryRow(
		`SELECT `+userCols+` FROM users WHERE pin = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		pin,
	)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by pin: %w", err)
	}
	return u, nil
}
