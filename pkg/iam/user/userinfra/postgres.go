package userinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hayat-market/authgate/pkg/errx"
	"github.com/hayat-market/authgate/pkg/iam"
	"github.com/hayat-market/authgate/pkg/iam/user"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresRepository is the Postgres implementation of user.Repository, for
// deployments that own the user table instead of fronting a content backend.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new Postgres user repository.
func NewPostgresRepository(db *sqlx.DB) user.Repository {
	return &PostgresRepository{db: db}
}

// userRow flattens the nested entity for sqlx scanning.
type userRow struct {
	Shortname      string         `db:"shortname"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	Email          sql.NullString `db:"email"`
	Mobile         sql.NullString `db:"mobile"`
	EmailVerified  bool           `db:"email_verified"`
	MobileVerified bool           `db:"mobile_verified"`
	Password       sql.NullString `db:"password"`
	AvatarURL      sql.NullString `db:"avatar_url"`
	PushToken      sql.NullString `db:"push_token"`
	Language       sql.NullString `db:"language"`
	GoogleID       sql.NullString `db:"google_id"`
	FacebookID     sql.NullString `db:"facebook_id"`
	GithubID       sql.NullString `db:"github_id"`
	MicrosoftID    sql.NullString `db:"microsoft_id"`
	Gender         sql.NullString `db:"gender"`
	DateOfBirth    sql.NullString `db:"date_of_birth"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r userRow) toDomain() *user.User {
	u := &user.User{
		Shortname: r.Shortname,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Contact: user.Contact{
			Email:          r.Email.String,
			Mobile:         r.Mobile.String,
			EmailVerified:  r.EmailVerified,
			MobileVerified: r.MobileVerified,
		},
		Password:    r.Password.String,
		AvatarURL:   r.AvatarURL.String,
		PushToken:   r.PushToken.String,
		Language:    r.Language.String,
		Gender:      r.Gender.String,
		DateOfBirth: r.DateOfBirth.String,
	}
	if r.GoogleID.Valid || r.FacebookID.Valid || r.GithubID.Valid || r.MicrosoftID.Valid {
		u.OAuthIDs = &user.OAuthIDs{
			GoogleID:    r.GoogleID.String,
			FacebookID:  r.FacebookID.String,
			GithubID:    r.GithubID.String,
			MicrosoftID: r.MicrosoftID.String,
		}
	}
	return u
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toRow(u *user.User) userRow {
	row := userRow{
		Shortname:      u.Shortname,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          nullable(u.Contact.Email),
		Mobile:         nullable(u.Contact.Mobile),
		EmailVerified:  u.Contact.EmailVerified,
		MobileVerified: u.Contact.MobileVerified,
		Password:       nullable(u.Password),
		AvatarURL:      nullable(u.AvatarURL),
		PushToken:      nullable(u.PushToken),
		Language:       nullable(u.Language),
		Gender:         nullable(u.Gender),
		DateOfBirth:    nullable(u.DateOfBirth),
		UpdatedAt:      time.Now().UTC(),
	}
	if u.OAuthIDs != nil {
		row.GoogleID = nullable(u.OAuthIDs.GoogleID)
		row.FacebookID = nullable(u.OAuthIDs.FacebookID)
		row.GithubID = nullable(u.OAuthIDs.GithubID)
		row.MicrosoftID = nullable(u.OAuthIDs.MicrosoftID)
	}
	return row
}

const userColumns = `shortname, first_name, last_name, email, mobile, email_verified,
	mobile_verified, password, avatar_url, push_token, language, google_id,
	facebook_id, github_id, microsoft_id, gender, date_of_birth, created_at, updated_at`

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.Wrap(err, "failed to query user", errx.TypeInternal)
	}
	return row.toDomain(), nil
}

// FindByChannel looks a user up by email or mobile.
func (r *PostgresRepository) FindByChannel(ctx context.Context, kind iam.ChannelKind, value string) (*user.User, error) {
	column := "mobile"
	if kind == iam.ChannelEmail {
		column = "email"
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
}

// FindByProviderID looks a user up by a federated provider identifier.
func (r *PostgresRepository) FindByProviderID(ctx context.Context, provider, providerID string) (*user.User, error) {
	var column string
	switch provider {
	case "google":
		column = "google_id"
	case "facebook":
		column = "facebook_id"
	case "github":
		column = "github_id"
	case "microsoft":
		column = "microsoft_id"
	default:
		return nil, errx.New("unknown sso provider: "+provider, errx.TypeValidation)
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, providerID)
}

// GetByShortname fetches a user by primary identifier.
func (r *PostgresRepository) GetByShortname(ctx context.Context, shortname string) (*user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE shortname = $1`, shortname)
}

// Create inserts a new user record.
func (r *PostgresRepository) Create(ctx context.Context, u *user.User) error {
	row := toRow(u)
	row.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO users (
			shortname, first_name, last_name, email, mobile, email_verified,
			mobile_verified, password, avatar_url, push_token, language,
			google_id, facebook_id, github_id, microsoft_id, gender,
			date_of_birth, created_at, updated_at
		) VALUES (
			:shortname, :first_name, :last_name, :email, :mobile, :email_verified,
			:mobile_verified, :password, :avatar_url, :push_token, :language,
			:google_id, :facebook_id, :github_id, :microsoft_id, :gender,
			:date_of_birth, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return user.ErrAlreadyExists().WithDetail("shortname", u.Shortname)
		}
		return errx.Wrap(err, "failed to create user", errx.TypeInternal).
			WithDetail("shortname", u.Shortname)
	}
	return nil
}

// Update replaces the mutable fields of an existing user record.
func (r *PostgresRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			first_name = :first_name,
			last_name = :last_name,
			email = :email,
			mobile = :mobile,
			email_verified = :email_verified,
			mobile_verified = :mobile_verified,
			password = :password,
			avatar_url = :avatar_url,
			push_token = :push_token,
			language = :language,
			google_id = :google_id,
			facebook_id = :facebook_id,
			github_id = :github_id,
			microsoft_id = :microsoft_id,
			gender = :gender,
			date_of_birth = :date_of_birth,
			updated_at = :updated_at
		WHERE shortname = :shortname`

	result, err := r.db.NamedExecContext(ctx, query, toRow(u))
	if err != nil {
		return errx.Wrap(err, "failed to update user", errx.TypeInternal).
			WithDetail("shortname", u.Shortname)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to read rows affected", errx.TypeInternal)
	}
	if affected == 0 {
		return user.ErrNotFound().WithDetail("shortname", u.Shortname)
	}
	return nil
}
