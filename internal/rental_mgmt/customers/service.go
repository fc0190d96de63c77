package customers

import (
	"context"
	"database/sql"
	"strings"

	"vitalops-backend/internal/platform/db"
)

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(d *sql.DB) *Service {
	return &Service{db: d, store: NewStore(d)}
}

func (s *Service) CreateCustomer(ctx context.Context, in CreateCustomerRequest) (*CustomerResponse, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Phone) == "" {
		return nil, ErrInvalid("name and phone are required")
	}

	c := &Customer{Name: in.Name, Phone: in.Phone}
	c.AlternatePhone = toNullString(in.AlternatePhone)
	c.Email = toNullString(in.Email)
	c.Address = toNullString(in.Address)
	c.City = toNullString(in.City)
	c.ReferredBy = toNullString(in.ReferredBy)
	c.Notes = toNullString(in.Notes)

	id, err := s.store.Insert(ctx, c)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return nil, ErrConflict("phone number already registered")
		}
		return nil, err
	}
	return s.GetCustomer(ctx, id)
}

func (s *Service) GetCustomer(ctx context.Context, id int64) (*CustomerResponse, error) {
	c, err := s.store.GetByID(ctx, s.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("customer not found")
		}
		return nil, err
	}
	resp := toResponse(c)
	return &resp, nil
}

func (s *Service) ListCustomers(ctx context.Context, q CustomerSearchQuery, p Page) ([]CustomerResponse, int64, error) {
	rows, total, err := s.store.List(ctx, q, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CustomerResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, toResponse(c))
	}
	return out, total, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int64, in UpdateCustomerRequest) (*CustomerResponse, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, ErrInvalid("name cannot be empty")
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) == "" {
		return nil, ErrInvalid("phone cannot be empty")
	}
	if err := s.store.UpdateByID(ctx, id, in); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound("customer not found")
		}
		if db.IsDuplicateKey(err) {
			return nil, ErrConflict("phone number already registered")
		}
		return nil, err
	}
	return s.GetCustomer(ctx, id)
}

// DeleteCustomer: ACTIVEなレンタルを持つ顧客は消せない
func (s *Service) DeleteCustomer(ctx context.Context, id int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.store.GetByID(ctx, tx, id); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound("customer not found")
			}
			return err
		}
		n, err := s.store.ActiveRentalCount(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict("customer has active rentals")
		}
		if err := s.store.DeleteTx(ctx, tx, id); err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrConflict("customer has related records")
			}
			return err
		}
		return nil
	})
}

// ===== helpers =====

func toResponse(c *Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:     c.CustomerID,
		Name:           c.Name,
		Phone:          c.Phone,
		AlternatePhone: nullToPtr(c.AlternatePhone),
		Email:          nullToPtr(c.Email),
		Address:        nullToPtr(c.Address),
		City:           nullToPtr(c.City),
		ReferredBy:     nullToPtr(c.ReferredBy),
		Notes:          nullToPtr(c.Notes),
		CreatedAt:      c.CreatedAt,
	}
}

func toNullString(s *string) (ns sql.NullString) {
	if s != nil && strings.TrimSpace(*s) != "" {
		ns.Valid, ns.String = true, *s
	}
	return
}

func nullToPtr(ns sql.NullString) *string {
	if ns.Valid {
		v := ns.String
		return &v
	}
	return nil
}
