package repository

import (
	"blogCMS/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type inviteRepository struct {
	db *sqlx.DB
}

type inviteRow struct {
	models.Invite
	InviterName  sql.NullString `db:"inviter_name"`
	InviterEmail sql.NullString `db:"inviter_email"`
}

func (r inviteRow) toModel() *models.Invite {
	invite := r.Invite
	invite.InvitedBy = &models.Author{
		UserID: invite.InvitedByID,
		Name:   r.InviterName.String,
		Email:  r.InviterEmail.String,
	}
	return &invite
}

const selectInviteQuery = `
	SELECT i.invite_id, i.email, i.code, i.used, i.expires_at, i.invited_by_id, i.created_at,
	       u.name AS inviter_name, u.email AS inviter_email
	FROM invites i
	LEFT JOIN users u ON u.user_id = i.invited_by_id
`

func NewInviteRepository(db *sqlx.DB) InviteRepository {
	return &inviteRepository{db: db}
}

// activeInviteQuery matches models.Invite.Active: an invite is still
// redeemable at the exact expiry instant.
const activeInviteQuery = `
	SELECT EXISTS (
		SELECT 1 FROM invites
		WHERE email = $1 AND used = FALSE AND expires_at >= $2
	)`

// CreateIfNoActive inserts the invite unless an active one already exists for
// the same email. Issuances for one email are serialised by an advisory lock
// held for the transaction, so of two concurrent calls exactly one inserts.
func (r *inviteRepository) CreateIfNoActive(ctx context.Context, invite *models.Invite, now time.Time) error {
	if invite.InviteID == "" {
		invite.InviteID = uuid.New().String()
	}
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, invite.Email); err != nil {
		return fmt.Errorf("ошибка при блокировке email приглашения: %w", err)
	}

	var exists bool
	err = tx.GetContext(ctx, &exists, activeInviteQuery, invite.Email, now)
	if err != nil {
		return fmt.Errorf("ошибка при проверке активных приглашений: %w", err)
	}
	if exists {
		return ErrActiveInviteExists
	}

	query := `
		INSERT INTO invites (invite_id, email, code, used, expires_at, invited_by_id, created_at)
		VALUES (:invite_id, :email, :code, :used, :expires_at, :invited_by_id, :created_at)
	`
	if _, err := tx.NamedExecContext(ctx, query, invite); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ошибка при создании приглашения: %w", ErrUniqueViolation)
		}
		return fmt.Errorf("ошибка при создании приглашения: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return nil
}

func (r *inviteRepository) HasActive(ctx context.Context, email string, now time.Time) (bool, error) {
	var exists bool

	err := r.db.GetContext(ctx, &exists, activeInviteQuery, email, now)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке активных приглашений: %w", err)
	}

	return exists, nil
}

func (r *inviteRepository) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	var row inviteRow

	err := r.db.GetContext(ctx, &row, selectInviteQuery+` WHERE i.code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("приглашение не найдено: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении приглашения: %w", err)
	}

	return row.toModel(), nil
}

func (r *inviteRepository) List(ctx context.Context) ([]*models.Invite, error) {
	var rows []inviteRow

	if err := r.db.SelectContext(ctx, &rows, selectInviteQuery+` ORDER BY i.created_at DESC`); err != nil {
		return nil, fmt.Errorf("ошибка при получении приглашений: %w", err)
	}

	invites := make([]*models.Invite, 0, len(rows))
	for _, row := range rows {
		invites = append(invites, row.toModel())
	}
	return invites, nil
}

func (r *inviteRepository) Delete(ctx context.Context, inviteID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE invite_id = $1`, inviteID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении приглашения: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("приглашение %s не найдено: %w", inviteID, ErrNotFound)
	}

	return nil
}

// Redeem marks the invite used and promotes the user from reader to author
// in one transaction. Users with any other role keep it.
func (r *inviteRepository) Redeem(ctx context.Context, inviteID, userID string) (*models.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE invites SET used = TRUE WHERE invite_id = $1 AND used = FALSE`, inviteID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при использовании приглашения: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrInviteUsed
	}

	_, err = tx.ExecContext(ctx, `UPDATE users SET role = $1 WHERE user_id = $2 AND role = $3`,
		models.RoleAuthor, userID, models.RoleReader)
	if err != nil {
		return nil, fmt.Errorf("ошибка при повышении роли пользователя: %w", err)
	}

	var user models.User
	if err := tx.GetContext(ctx, &user, `SELECT * FROM users WHERE user_id = $1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с ID %s не найден: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return &user, nil
}
