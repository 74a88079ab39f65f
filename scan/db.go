/*
Package scan builds a catalog of the icon states found in a tree of
DMI files, primarily to hunt for duplicate state names, which the
icon format permits but game engines resolve by silently picking the
first match.
*/
package scan

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/dmi/metadata"
	_ "github.com/mattn/go-sqlite3"
)

// StateDB is the sqlite-backed state catalog.
type StateDB struct {
	db *sql.DB
}

// NewStateDB opens, creating if necessary, a catalog at the given
// path.
func NewStateDB(file string) (*StateDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS file (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS state (id INTEGER PRIMARY KEY NOT NULL, file_id INTEGER NOT NULL, name TEXT NOT NULL, dirs INTEGER NOT NULL, frames INTEGER NOT NULL, FOREIGN KEY(file_id) REFERENCES file(id))"); err != nil {
		return nil, err
	}

	return &StateDB{
		db: db,
	}, nil
}

// Close closes the catalog.
func (d *StateDB) Close() error {
	return d.db.Close()
}

// AddFile records every state of one DMI file, replacing any previous
// entry for the same path.
func (d *StateDB) AddFile(path string, states []*metadata.State) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM state WHERE file_id IN (SELECT id FROM file WHERE path = ?)", path); err != nil {
		tx.Rollback()
		return err
	}
	if _, err = tx.Exec("DELETE FROM file WHERE path = ?", path); err != nil {
		tx.Rollback()
		return err
	}

	result, err := tx.Exec("INSERT INTO file (path) VALUES (?)", path)
	if err != nil {
		tx.Rollback()
		return err
	}
	fileID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, s := range states {
		if _, err = tx.Exec("INSERT INTO state (file_id, name, dirs, frames) VALUES (?, ?, ?, ?)", fileID, s.Name, s.Dirs, s.Frames); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Duplicate describes a state name appearing more than once within the
// same file.
type Duplicate struct {
	Path  string
	Name  string
	Count int
}

// Duplicates returns every duplicated state name in the catalog,
// ordered by path then name.
func (d *StateDB) Duplicates() ([]Duplicate, error) {
	rows, err := d.db.Query("SELECT file.path, state.name, COUNT(*) FROM state JOIN file ON file.id = state.file_id GROUP BY state.file_id, state.name HAVING COUNT(*) > 1 ORDER BY file.path, state.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var duplicates []Duplicate
	for rows.Next() {
		var dup Duplicate
		if err := rows.Scan(&dup.Path, &dup.Name, &dup.Count); err != nil {
			return nil, err
		}
		duplicates = append(duplicates, dup)
	}

	return duplicates, rows.Err()
}

// Files returns the number of files in the catalog.
func (d *StateDB) Files() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM file").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
