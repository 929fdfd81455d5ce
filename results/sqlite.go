package results

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	vmc "github.com/MarcSerraPeralta/variational-QMonteCarlo"
)

const tableResults = "results"

// SQLite stores one row per outer iteration in a SQLite database.
type SQLite struct {
	Path string
}

func (s SQLite) Save(ests []vmc.Estimate) error {
	db, err := newDB(s.Path)
	if err != nil {
		return errors.Wrap(err, "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for i, est := range ests {
		if err1 := setEstimate(ctx, db, i, est); err1 != nil && err == nil {
			err = errors.Wrap(err1, "")
			break
		}
	}

	if err1 := db.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

func setEstimate(ctx context.Context, db *sql.DB, iter int, est vmc.Estimate) error {
	alphas := make([]string, 0, len(est.Alpha))
	for _, a := range est.Alpha {
		alphas = append(alphas, strconv.FormatFloat(a, 'f', -1, 64))
	}

	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (iter, alpha, energy, stderr, acceptance) VALUES (?, ?, ?, ?, ?)`, tableResults)
	args := []any{iter, strings.Join(alphas, ","), est.Energy, est.Stderr, est.Acceptance}
	if _, err := db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return nil
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}

	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableResults)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE %s (iter INTEGER, alpha TEXT, energy REAL, stderr REAL, acceptance REAL, PRIMARY KEY (iter)) STRICT`, tableResults)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
