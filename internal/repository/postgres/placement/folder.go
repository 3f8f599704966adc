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

const folderColumns = "id, user_id, parent_id, name, sort_order, created_at, updated_at"

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) placementRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		logger: config.Logger,
	}
}

// Create creates a new folder. The sibling-name constraint is the final arbiter
// when two transactions race past the service's duplicate check.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, parent_id, name, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, postgres.FoldersTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.UserID,
		folder.ParentID,
		folder.Name,
		folder.Order,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return domain.NewFolderNameConflict("")
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	return r.getOne(ctx, id, userID, "")
}

// GetByIDForUpdate retrieves a folder and locks the row until the transaction ends
func (r *PostgresFolderRepository) GetByIDForUpdate(ctx context.Context, id, userID string) (*models.Folder, error) {
	return r.getOne(ctx, id, userID, "FOR UPDATE")
}

func (r *PostgresFolderRepository) getOne(ctx context.Context, id, userID, lockClause string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
		%s
	`, folderColumns, postgres.FoldersTable, lockClause)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) || postgres.IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// FindSiblingByName returns the folder named name under parentID, or nil if none
func (r *PostgresFolderRepository) FindSiblingByName(ctx context.Context, userID string, parentID *string, name string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3
	`, folderColumns, postgres.FoldersTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, userID, parentID, name))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get folder by name and parent: %w", err)
	}

	return folder, nil
}

// MaxSiblingOrder returns the highest sort order under parentID
func (r *PostgresFolderRepository) MaxSiblingOrder(ctx context.Context, userID string, parentID *string) (int, bool, error) {
	query := fmt.Sprintf(`
		SELECT MAX(sort_order)
		FROM %s
		WHERE user_id = $1 AND parent_id IS NOT DISTINCT FROM $2
	`, postgres.FoldersTable)

	var max *int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, parentID).Scan(&max); err != nil {
		return 0, false, fmt.Errorf("max sibling order: %w", err)
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

// Update updates a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, name = $2, sort_order = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`, postgres.FoldersTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.ParentID,
		folder.Name,
		folder.Order,
		folder.UpdatedAt,
		folder.ID,
		folder.UserID,
	)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return domain.NewFolderNameConflict("")
		}
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("parent folder: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a folder row. Children and cards must already be moved away.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, postgres.FoldersTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s still referenced: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ReparentChildren moves the direct children of folderID under newParentID.
// The sibling-name check is deferred to commit: while the parent row still
// exists a promoted child may legitimately share its name.
func (r *PostgresFolderRepository) ReparentChildren(ctx context.Context, userID, folderID string, newParentID *string) (int64, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	if _, err := executor.Exec(ctx, "SET CONSTRAINTS folders_sibling_name_key DEFERRED"); err != nil {
		return 0, fmt.Errorf("defer sibling name check: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, updated_at = NOW()
		WHERE user_id = $2 AND parent_id = $3
	`, postgres.FoldersTable)

	result, err := executor.Exec(ctx, query, newParentID, userID, folderID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return 0, domain.NewFolderNameConflict("")
		}
		return 0, fmt.Errorf("reparent child folders: %w", err)
	}

	return result.RowsAffected(), nil
}

// UpdateOrders writes every order value in a single UPDATE ... CASE statement
func (r *PostgresFolderRepository) UpdateOrders(ctx context.Context, userID string, items []models.FolderOrder) error {
	if len(items) == 0 {
		return nil
	}

	orderCase := sq.Case("id")
	ids := make([]string, 0, len(items))
	for _, item := range items {
		orderCase = orderCase.When(sq.Expr("?::uuid", item.ID), sq.Expr("?::integer", item.Order))
		ids = append(ids, item.ID)
	}

	query, args, err := postgres.Psql.
		Update(postgres.FoldersTable).
		Set("sort_order", orderCase).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID, "id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reorder query: %w", err)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("reorder folders: %w", err)
	}

	if result.RowsAffected() != int64(len(items)) {
		return fmt.Errorf("reorder folders: updated %d of %d: %w", result.RowsAffected(), len(items), domain.ErrNotFound)
	}

	return nil
}

// ListByUser retrieves all folders of a user (flat list) with their card counts
func (r *PostgresFolderRepository) ListByUser(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT f.id, f.user_id, f.parent_id, f.name, f.sort_order, f.created_at, f.updated_at,
		       COUNT(c.id) AS card_count
		FROM %s f
		LEFT JOIN %s c ON c.folder_id = f.id
		WHERE f.user_id = $1
		GROUP BY f.id
		ORDER BY f.sort_order ASC, lower(f.name) ASC
	`, postgres.FoldersTable, postgres.CardsTable)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	folders := make([]models.Folder, 0)
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.UserID,
			&folder.ParentID,
			&folder.Name,
			&folder.Order,
			&folder.CreatedAt,
			&folder.UpdatedAt,
			&folder.CardCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// LockHierarchy serializes structural changes to one user's tree for the rest
// of the transaction, so concurrent moves cannot combine into a cycle.
func (r *PostgresFolderRepository) LockHierarchy(ctx context.Context, userID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", "folders:"+userID); err != nil {
		return fmt.Errorf("lock folder hierarchy: %w", err)
	}
	return nil
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.UserID,
		&folder.ParentID,
		&folder.Name,
		&folder.Order,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
