package eventlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseFile is the sqlite file inside the data directory
const DatabaseFile = "events.db"

// EventRecord is one persisted event
type EventRecord struct {
	Seq        uint64 `gorm:"primaryKey;autoIncrement:false"`
	Ordinal    uint64 `gorm:"index"`
	Timestamp  uint64
	Name       string `gorm:"index;size:64"`
	ProposalID string `gorm:"index;size:66"`
	Payload    []byte
}

// TableName overrides the gorm default
func (EventRecord) TableName() string {
	return "events"
}

// Store keeps the event history in sqlite
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewStore opens (creating if needed) the event database in the data directory
func NewStore(cfg *config.RuntimeConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(cfg.DataDir, DatabaseFile)
	// WAL keeps readers (serve) and the writing command from blocking each other
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open event database: %w", err)
	}

	logger.Debug("migrating event log", "path", path)
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate event database: %w", err)
	}

	return &Store{db: db, logger: logger.With("component", "eventlog")}, nil
}

// Publish appends events. Sequence numbers already present are ignored.
func (s *Store) Publish(ctx context.Context, events []domain.EventEnvelope) error {
	if len(events) == 0 {
		return nil
	}
	records := make([]EventRecord, 0, len(events))
	for _, env := range events {
		payload, err := domain.EncodeEvent(env.Event)
		if err != nil {
			return fmt.Errorf("failed to encode event %d: %w", env.Seq, err)
		}
		proposal, _ := domain.ProposalOf(env.Event)
		records = append(records, EventRecord{
			Seq:        env.Seq,
			Ordinal:    env.Ordinal,
			Timestamp:  env.Timestamp,
			Name:       env.Event.ContractEventName(),
			ProposalID: strings.ToLower(proposal),
			Payload:    payload,
		})
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records)
	if result.Error != nil {
		return fmt.Errorf("failed to store events: %w", result.Error)
	}
	s.logger.Debug("stored events", "count", result.RowsAffected)
	return nil
}

// List returns events in sequence order
func (s *Store) List(ctx context.Context, filter domain.EventFilter) ([]domain.EventEnvelope, error) {
	query := s.db.WithContext(ctx).Model(&EventRecord{}).Order("seq ASC")
	if filter.Name != "" {
		query = query.Where("name = ?", filter.Name)
	}
	if filter.ProposalID != "" {
		query = query.Where("proposal_id = ?", strings.ToLower(filter.ProposalID))
	}
	if filter.AfterSeq > 0 {
		query = query.Where("seq > ?", filter.AfterSeq)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []EventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	out := make([]domain.EventEnvelope, 0, len(records))
	for _, r := range records {
		ev, err := domain.DecodeEvent(r.Name, r.Payload)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", r.Seq, err)
		}
		out = append(out, domain.EventEnvelope{
			Seq:       r.Seq,
			Ordinal:   r.Ordinal,
			Timestamp: r.Timestamp,
			Event:     ev,
		})
	}
	return out, nil
}

// Reset drops the whole history
func (s *Store) Reset(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Exec("DELETE FROM events").Error; err != nil {
		return fmt.Errorf("failed to reset event log: %w", err)
	}
	return nil
}

// Close releases the database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ usecase.EventLog = (*Store)(nil)
