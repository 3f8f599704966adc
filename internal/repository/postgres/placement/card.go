package placement

import (
	"context"
	"fmt"
	"log/slog"

	"cardshelf/internal/domain"
	models "cardshelf/internal/domain/models/placement"
	placementRepo "cardshelf/internal/domain/repositories/placement"
	"cardshelf/internal/repository/postgres"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var cardColumns = []string{"id", "user_id", "title", "content", "folder_id", "is_starred", "created_at", "updated_at"}

// PostgresCardRepository implements the CardRepository interface
type PostgresCardRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewCardRepository creates a new card repository
func NewCardRepository(config *postgres.RepositoryConfig) placementRepo.CardRepository {
	return &PostgresCardRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

// Create creates a new card
func (r *PostgresCardRepository) Create(ctx context.Context, card *models.Card) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, content, folder_id, is_starred, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, postgres.CardsTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		card.UserID,
		card.Title,
		card.Content,
		card.FolderID,
		card.IsStarred,
		card.CreatedAt,
		card.UpdatedAt,
	).Scan(&card.ID, &card.CreatedAt, &card.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create card: %w", err)
	}

	return nil
}

// GetByID retrieves a card by ID
func (r *PostgresCardRepository) GetByID(ctx context.Context, id, userID string) (*models.Card, error) {
	return r.getOne(ctx, id, userID, false)
}

// GetByIDForUpdate retrieves a card and locks the row until the transaction ends
func (r *PostgresCardRepository) GetByIDForUpdate(ctx context.Context, id, userID string) (*models.Card, error) {
	return r.getOne(ctx, id, userID, true)
}

func (r *PostgresCardRepository) getOne(ctx context.Context, id, userID string, forUpdate bool) (*models.Card, error) {
	builder := postgres.Psql.
		Select(cardColumns...).
		From(postgres.CardsTable).
		Where(sq.Eq{"id": id, "user_id": userID})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build card query: %w", err)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	card, err := scanCard(executor.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get card: %w", err)
	}

	return card, nil
}

// Update updates a card
func (r *PostgresCardRepository) Update(ctx context.Context, card *models.Card) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, content = $2, folder_id = $3, is_starred = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, postgres.CardsTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		card.Title,
		card.Content,
		card.FolderID,
		card.IsStarred,
		card.UpdatedAt,
		card.ID,
		card.UserID,
	)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", card.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a card
func (r *PostgresCardRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, postgres.CardsTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DetachFromFolder makes every card of folderID uncategorized
func (r *PostgresCardRepository) DetachFromFolder(ctx context.Context, userID, folderID string) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = NULL, updated_at = NOW()
		WHERE user_id = $1 AND folder_id = $2
	`, postgres.CardsTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, userID, folderID)
	if err != nil {
		return 0, fmt.Errorf("detach cards from folder: %w", err)
	}

	return result.RowsAffected(), nil
}

// List returns the user's cards matching filter, most recently updated first
func (r *PostgresCardRepository) List(ctx context.Context, userID string, filter models.CardFilter) ([]models.Card, error) {
	builder := postgres.Psql.
		Select(cardColumns...).
		From(postgres.CardsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("updated_at DESC", "id ASC")

	switch {
	case filter.FolderID != nil:
		builder = builder.Where(sq.Eq{"folder_id": *filter.FolderID})
	case filter.Uncategorized:
		builder = builder.Where(sq.Eq{"folder_id": nil})
	}
	if filter.StarredOnly {
		builder = builder.Where(sq.Eq{"is_starred": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build card list query: %w", err)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	cards := make([]models.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, *card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	return cards, nil
}

func scanCard(row pgx.Row) (*models.Card, error) {
	var card models.Card
	err := row.Scan(
		&card.ID,
		&card.UserID,
		&card.Title,
		&card.Content,
		&card.FolderID,
		&card.IsStarred,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &card, nil
}
