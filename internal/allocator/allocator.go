package allocator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"group-board-api/internal/domain"
)

// CodeWidth is the fixed width of every allocated short code.
const CodeWidth = 6

// maxCode is the largest value a fixed-width code can carry.
const maxCode = 999999

// defaultMaxAttempts bounds how often a lost allocation race is retried
// before the conflict is surfaced to the caller.
const defaultMaxAttempts = 3

// Kind selects which entity table a code is drawn from. Codes are unique
// per (group, kind); the same code may exist in different kinds of the
// same group.
type Kind string

const (
	KindCard    Kind = "card"
	KindCardTag Kind = "card_tag"
	KindUserTag Kind = "user_tag"
)

// ErrCodeSpaceExhausted is returned when a scope already holds the highest
// representable code and no further code can be allocated.
var ErrCodeSpaceExhausted = errors.New("code space exhausted for scope")

// ErrAllocationConflict is returned when every allocation attempt lost the
// race against a concurrent writer in the same scope.
var ErrAllocationConflict = errors.New("code allocation conflict after retries")

// Allocator hands out the next free short code within a (group, kind) scope
// and runs the caller's insert in the same transaction, so the computed code
// and the row carrying it either land together or not at all.
type Allocator interface {
	Allocate(ctx context.Context, groupID uuid.UUID, kind Kind, insert func(tx *gorm.DB, code string) error) (string, error)
}

// CodeAllocator is the GORM implementation of Allocator. Uniqueness is
// backed by the (group_id, code) unique index on each entity table: a
// concurrent writer that picked the same next code makes the insert fail
// with a duplicate-key error, and the whole scan-and-insert is retried.
type CodeAllocator struct {
	db          *gorm.DB
	maxAttempts int
	logger      *zap.Logger
	onRetry     func()
}

// Option configures a CodeAllocator
type Option func(*CodeAllocator)

// WithMaxAttempts overrides the retry bound
func WithMaxAttempts(n int) Option {
	return func(a *CodeAllocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithRetryHook registers a callback invoked once per lost race, used to
// feed the allocator retry metric
func WithRetryHook(fn func()) Option {
	return func(a *CodeAllocator) { a.onRetry = fn }
}

// New creates a CodeAllocator
func New(db *gorm.DB, logger *zap.Logger, opts ...Option) *CodeAllocator {
	a := &CodeAllocator{
		db:          db,
		maxAttempts: defaultMaxAttempts,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate computes the next free code for the scope and invokes insert with
// it inside one transaction. Deleting the highest-coded entity makes its code
// available again on the next allocation; codes fill gaps at the top rather
// than growing monotonically.
func (a *CodeAllocator) Allocate(ctx context.Context, groupID uuid.UUID, kind Kind, insert func(tx *gorm.DB, code string) error) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		var code string
		err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			next, err := a.nextCode(tx, groupID, kind)
			if err != nil {
				return err
			}
			code = next
			return insert(tx, code)
		})
		if err == nil {
			return code, nil
		}
		if errors.Is(err, ErrCodeSpaceExhausted) {
			return "", err
		}
		if !isDuplicateCodeError(err) {
			return "", err
		}

		lastErr = err
		if a.onRetry != nil {
			a.onRetry()
		}
		a.logger.Warn("Lost code allocation race, retrying",
			zap.String("group_id", groupID.String()),
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempt))
	}

	a.logger.Error("Code allocation failed after retries",
		zap.String("group_id", groupID.String()),
		zap.String("kind", string(kind)),
		zap.Int("attempts", a.maxAttempts),
		zap.Error(lastErr))
	return "", ErrAllocationConflict
}

// nextCode scans the current maximum code among surviving rows of the scope
// and returns it incremented by one, zero-padded to CodeWidth.
func (a *CodeAllocator) nextCode(tx *gorm.DB, groupID uuid.UUID, kind Kind) (string, error) {
	model, err := modelFor(kind)
	if err != nil {
		return "", err
	}

	var current sql.NullString
	row := tx.Model(model).
		Where("group_id = ?", groupID).
		Select("MAX(code)").
		Row()
	if err := row.Scan(&current); err != nil {
		return "", fmt.Errorf("failed to scan max code: %w", err)
	}

	n := 0
	if current.Valid && current.String != "" {
		n, err = strconv.Atoi(current.String)
		if err != nil {
			return "", fmt.Errorf("malformed code %q in scope %s/%s: %w", current.String, groupID, kind, err)
		}
	}

	if n >= maxCode {
		return "", fmt.Errorf("%w: %s/%s", ErrCodeSpaceExhausted, groupID, kind)
	}

	return fmt.Sprintf("%0*d", CodeWidth, n+1), nil
}

func modelFor(kind Kind) (interface{}, error) {
	switch kind {
	case KindCard:
		return &domain.Card{}, nil
	case KindCardTag:
		return &domain.CardTag{}, nil
	case KindUserTag:
		return &domain.UserTag{}, nil
	default:
		return nil, fmt.Errorf("unknown code kind %q", kind)
	}
}

// isDuplicateCodeError reports whether the insert failed on the
// (group_id, code) unique index, which is how a lost race shows up.
func isDuplicateCodeError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
