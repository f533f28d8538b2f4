package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/p2p-lending-ledger/internal/domain/ledger"
)

const (
	// HistoryCollectionName is the name of the archived entries collection in MongoDB
	HistoryCollectionName = "ledger_history"
)

// HistoryRepository implements the ledger.History interface for MongoDB
type HistoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new MongoDB history repository
func NewHistoryRepository(logger *slog.Logger, db *mongo.Database) ledger.History {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// ArchiveBatch mirrors a committed entry group into the archive. Entries
// already archived are skipped so a retried outbox message is harmless.
func (r *HistoryRepository) ArchiveBatch(ctx context.Context, entries []ledger.Entry) error {
	collection := r.db.Collection(HistoryCollectionName)

	for i := range entries {
		entry := &entries[i]

		filter := bson.M{"id": entry.ID}
		count, err := collection.CountDocuments(ctx, filter)
		if err != nil {
			r.logger.Error("Failed to check for archived ledger entry",
				"entry_id", entry.ID.String(),
				"error", err)
			return fmt.Errorf("failed to check for archived ledger entry: %w", err)
		}
		if count > 0 {
			continue
		}

		if _, err := collection.InsertOne(ctx, entry); err != nil {
			r.logger.Error("Failed to archive ledger entry",
				"entry_id", entry.ID.String(),
				"error", err)
			return fmt.Errorf("failed to archive ledger entry: %w", err)
		}
	}

	return nil
}

// GetByAccountID retrieves paginated archived entries for an account.
// Results are sorted by sequence number in descending order (newest first).
func (r *HistoryRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"account_id": accountID}
	opts := options.Find().
		SetSort(bson.M{"sequence_number": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived ledger entries",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archived ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archived ledger entries",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archived ledger entries: %w", err)
	}

	return entries, nil
}

// CountByAccountID counts the total number of archived entries for an account
func (r *HistoryRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"account_id": accountID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count archived ledger entries",
			"account_id", accountID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count archived ledger entries: %w", err)
	}

	return count, nil
}

// GetByLoanID retrieves every archived entry touching a loan, oldest first.
// This is the full audit trail of one loan's money movements.
func (r *HistoryRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*ledger.Entry, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"loan_id": loanID}
	opts := options.Find().SetSort(bson.M{"sequence_number": 1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived loan entries",
			"loan_id", loanID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archived loan entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archived loan entries",
			"loan_id", loanID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archived loan entries: %w", err)
	}

	return entries, nil
}

// GetByTimeRange retrieves paginated archived entries within the specified time window
func (r *HistoryRepository) GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*ledger.Entry, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{
		"created_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived entries by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to get archived entries by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archived entries",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to decode archived entries: %w", err)
	}

	return entries, nil
}
