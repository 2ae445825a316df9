package directory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"
	"github.com/MarcoTuMD/Template-Admin/internal/db"
)

// PasswordProviderID names the email/password sign-in method.
const PasswordProviderID = "password"

// Directory reads user profiles and their linked sign-in methods.
type Directory struct {
	db *db.DB
}

func New(db *db.DB) *Directory {
	return &Directory{db: db}
}

// Credential builds the provider view of userID. primary is the sign-in
// method of the current session and is listed first. A user that no
// longer exists yields (nil, nil).
func (d *Directory) Credential(ctx context.Context, userID, primary string) (*auth.Credential, error) {
	cred := &auth.Credential{}

	err := d.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, photo_url
		FROM users
		WHERE id = $1 AND status = 'active'
	`, userID).Scan(&cred.ID, &cred.Email, &cred.DisplayName, &cred.PhotoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	linked, err := d.linkedProviders(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(linked)+1)
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		cred.ProviderData = append(cred.ProviderData, auth.ProviderInfo{ProviderID: id})
	}

	add(primary)
	for _, p := range linked {
		add(p)
	}

	return cred, nil
}

func (d *Directory) linkedProviders(ctx context.Context, userID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT 'password' AS provider, created_at FROM credentials WHERE user_id = $1
		UNION ALL
		SELECT provider, created_at FROM identities WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var (
			provider string
			created  sql.NullTime
		)
		if err := rows.Scan(&provider, &created); err != nil {
			return nil, err
		}
		out = append(out, provider)
	}
	return out, rows.Err()
}
