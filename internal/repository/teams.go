package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

func (r *Repository) GetMirroredTeams() ([]*domain.Team, error) {
	query := `
		SELECT id, name, creator, table_no
		FROM directory_teams ORDER BY position
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*domain.Team, 0)
	for rows.Next() {
		team := &domain.Team{}
		var tableNo sql.NullInt32
		if err := rows.Scan(&team.ID, &team.Name, &team.Creator, &tableNo); err != nil {
			return nil, err
		}
		if tableNo.Valid {
			n := int(tableNo.Int32)
			team.TableNo = &n
		}
		teams = append(teams, team)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}
