package catalog

import (
	"context"
	"errors"
	"strings"

	"library-backend/internal/domain/actor"
	"library-backend/internal/domain/apperr"
	domain "library-backend/internal/domain/catalog"
	"library-backend/internal/domain/reservation"
	"library-backend/internal/domain/uow"

	"gorm.io/gorm"
)

// Promoter offers a freed copy to the reservation queue within the caller's tx.
type Promoter interface {
	Promote(ctx context.Context, r uow.Repos, bookID, copyID uint64) (*reservation.Reservation, error)
}

type Usecase struct {
	repo  domain.Repository
	uow   uow.UnitOfWork
	queue Promoter
}

// NewUsecase: queue may be nil, new copies then stay available.
func NewUsecase(r domain.Repository, tx uow.UnitOfWork, queue Promoter) *Usecase {
	return &Usecase{repo: r, uow: tx, queue: queue}
}

type CreateBookInput struct {
	ISBN   string `json:"isbn" validate:"required,max=20"`
	Title  string `json:"title" validate:"required,max=255"`
	Author string `json:"author" validate:"max=255"`
}

type AddCopyInput struct {
	Barcode   string `json:"barcode" validate:"required,max=64"`
	Condition string `json:"condition" validate:"omitempty,oneof=new good fair poor damaged"`
}

type BookDTO struct {
	ID        uint64            `json:"id"`
	ISBN      string            `json:"isbn"`
	Title     string            `json:"title"`
	Author    string            `json:"author"`
	Available int               `json:"available"`
	Copies    []domain.BookCopy `json:"copies"`
}

func (u *Usecase) CreateBook(ctx context.Context, a actor.Actor, in CreateBookInput) (*BookDTO, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validationf("title is required")
	}
	b := &domain.Book{ISBN: strings.TrimSpace(in.ISBN), Title: title, Author: strings.TrimSpace(in.Author)}
	if err := u.repo.CreateBook(ctx, b); err != nil {
		return nil, err
	}
	return &BookDTO{ID: b.ID, ISBN: b.ISBN, Title: b.Title, Author: b.Author, Copies: []domain.BookCopy{}}, nil
}

func (u *Usecase) GetBook(ctx context.Context, bookID uint64) (*BookDTO, error) {
	b, err := u.repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, domain.ErrBookNotFound)
	}
	copies, err := u.repo.ListCopiesByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	available := 0
	for _, c := range copies {
		if c.Status == domain.CopyAvailable {
			available++
		}
	}
	if copies == nil {
		copies = []domain.BookCopy{}
	}
	return &BookDTO{ID: b.ID, ISBN: b.ISBN, Title: b.Title, Author: b.Author, Available: available, Copies: copies}, nil
}

// ListCopies returns the copies of a book, optionally narrowed to one status.
func (u *Usecase) ListCopies(ctx context.Context, bookID uint64, status string) ([]domain.BookCopy, error) {
	if _, err := u.repo.GetBook(ctx, bookID); err != nil {
		return nil, notFound(err, domain.ErrBookNotFound)
	}
	copies, err := u.repo.ListCopiesByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.BookCopy, 0, len(copies))
	for _, c := range copies {
		if status == "" || string(c.Status) == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (u *Usecase) AddCopy(ctx context.Context, a actor.Actor, bookID uint64, in AddCopyInput) (*domain.BookCopy, error) {
	if err := actor.RequireStaff(a); err != nil {
		return nil, err
	}
	cond := domain.ConditionGood
	if in.Condition != "" {
		cond = domain.Condition(in.Condition)
	}
	if !cond.Valid() {
		return nil, apperr.Validationf("unknown condition %q", in.Condition)
	}
	c := &domain.BookCopy{
		BookID:    bookID,
		Barcode:   strings.TrimSpace(in.Barcode),
		Condition: cond,
		Status:    domain.CopyAvailable,
	}
	// a new copy goes to the head of the reservation queue before anyone can borrow it
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Catalog.GetBookForUpdate(ctx, bookID); err != nil {
			return notFound(err, domain.ErrBookNotFound)
		}
		if err := r.Catalog.CreateCopy(ctx, c); err != nil {
			return err
		}
		if u.queue == nil {
			return nil
		}
		promoted, err := u.queue.Promote(ctx, r, bookID, c.ID)
		if err != nil {
			return err
		}
		if promoted != nil {
			c.Status = domain.CopyReserved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
