// Package kyc is a real compliance.Gate backend, persisted in MySQL via
// gorm. It keeps two checks separate: KYC status gates whether a user may
// trade at all, AML thresholds flag an individual trade for review after
// it is recorded (they never block it). It is a
// narrower concern than portfolio risk management: this package answers
// "is this user and this trade allowed", never "should this user hold
// this position".
package kyc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/liquidbond/matchingledger/internal/bonds/domain"
)

// Status is a user's know-your-customer verification state.
type Status string

const (
	StatusUnverified Status = "UNVERIFIED"
	StatusVerified   Status = "VERIFIED"
	StatusSuspended  Status = "SUSPENDED"
)

// Record is the gorm model for a user's KYC status.
type Record struct {
	UserID    string `gorm:"primaryKey;column:user_id"`
	Status    Status `gorm:"column:status"`
	UpdatedAt time.Time
}

// TableName pins the table name so it does not depend on gorm's pluralizer.
func (Record) TableName() string { return "bonds_kyc_records" }

// AMLThreshold is the per-instrument trade amount above which a trade is
// flagged for review rather than rejected outright.
type AMLThreshold struct {
	Instrument string  `gorm:"primaryKey;column:instrument"`
	MaxAmount  float64 `gorm:"column:max_amount"`
}

// TableName pins the table name so it does not depend on gorm's pluralizer.
func (AMLThreshold) TableName() string { return "bonds_aml_thresholds" }

// Gate is a compliance.Gate backed by a MySQL database through gorm.
type Gate struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New wraps an open gorm.DB. The caller owns migrations and connection
// lifecycle; New only issues queries.
func New(db *gorm.DB, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{db: db, logger: logger}
}

// IsUserCompliant looks up the user's KYC record. A missing record is
// treated as unverified, not an error: most users simply have never been
// onboarded into the compliance backend.
func (g *Gate) IsUserCompliant(ctx context.Context, userID string) (bool, error) {
	var rec Record
	err := g.db.WithContext(ctx).First(&rec, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.Status == StatusVerified, nil
}

// PreTradeCheck only requires both sides to be KYC-verified; it never
// blocks on the AML threshold itself — exceeding it is reported via
// ReportTrade for a human reviewer instead.
func (g *Gate) PreTradeCheck(ctx context.Context, instrument domain.Instrument, buyerID, sellerID string) (bool, error) {
	buyerOK, err := g.IsUserCompliant(ctx, buyerID)
	if err != nil {
		return false, err
	}
	sellerOK, err := g.IsUserCompliant(ctx, sellerID)
	if err != nil {
		return false, err
	}
	return buyerOK && sellerOK, nil
}

// ReportTrade flags the trade for review when its amount exceeds the
// instrument's AML threshold. Absence of a configured threshold means no
// review is triggered.
func (g *Gate) ReportTrade(ctx context.Context, trade *domain.Trade) error {
	var threshold AMLThreshold
	err := g.db.WithContext(ctx).First(&threshold, "instrument = ?", string(trade.Instrument)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	amount, _ := trade.Amount().Float64()
	if amount > threshold.MaxAmount {
		g.logger.Warn("trade exceeds AML threshold, flagged for review",
			slog.String("trade_id", trade.ID),
			slog.String("instrument", string(trade.Instrument)),
			slog.Float64("amount", amount),
			slog.Float64("threshold", threshold.MaxAmount),
		)
	}
	return nil
}

var _ interface {
	IsUserCompliant(ctx context.Context, userID string) (bool, error)
	PreTradeCheck(ctx context.Context, instrument domain.Instrument, buyerID, sellerID string) (bool, error)
	ReportTrade(ctx context.Context, trade *domain.Trade) error
} = (*Gate)(nil)
