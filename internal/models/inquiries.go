package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// InquiryNew is the status of an unanswered inquiry.
const InquiryNew = "new"

// Inquiry is a contact form submission.
type Inquiry struct {
	ID        int64     `db:"id"`
	Reference string    `db:"reference"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Subject   string    `db:"subject"`
	Message   string    `db:"message"`
	Language  string    `db:"language"`
	IPAddress string    `db:"ip_address"`
	UserAgent string    `db:"user_agent"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// InquiryInput is the contact form.
type InquiryInput struct {
	Name      string `form:"name" validate:"required,max=150"`
	Email     string `form:"email" validate:"required,email"`
	Phone     string `form:"phone" validate:"omitempty,phone"`
	Subject   string `form:"subject" validate:"max=255"`
	Message   string `form:"message" validate:"required"`
	Language  string `form:"-"`
	IPAddress string `form:"-"`
	UserAgent string `form:"-"`
}

// Inquiries stores contact form submissions.
type Inquiries struct {
	db *sqlx.DB
}

func NewInquiries(conn *sqlx.DB) *Inquiries {
	return &Inquiries{db: conn}
}

// Validate checks in and returns ValidationErrors keyed by form field.
func (m *Inquiries) Validate(in InquiryInput) error {
	return validateStruct(in)
}

// Create validates and stores in with a fresh reference and status "new".
func (m *Inquiries) Create(ctx context.Context, in InquiryInput) (*Inquiry, error) {
	if err := m.Validate(in); err != nil {
		return nil, err
	}
	inq := &Inquiry{
		Reference: uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		Language:  in.Language,
		IPAddress: in.IPAddress,
		UserAgent: truncate(in.UserAgent, 500),
		Status:    InquiryNew,
		CreatedAt: time.Now().UTC(),
	}
	if inq.Language == "" {
		inq.Language = "en"
	}

	id, err := insert(ctx, m.db, `INSERT INTO inquiries
		(reference, name, email, phone, subject, message, language, ip_address, user_agent, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inq.Reference, inq.Name, inq.Email, inq.Phone, inq.Subject, inq.Message, inq.Language,
		inq.IPAddress, inq.UserAgent, inq.Status, inq.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inq.ID = id
	return inq, nil
}

// Recent returns the latest inquiries, newest first.
func (m *Inquiries) Recent(ctx context.Context, limit int) ([]Inquiry, error) {
	if limit <= 0 {
		limit = 20
	}
	out := []Inquiry{}
	err := list(ctx, m.db, &out, `SELECT id, reference, name, email, phone, subject, message, language,
		ip_address, user_agent, status, created_at FROM inquiries ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	return out, err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
