package storage

import (
	"path/filepath"
	"strings"

	"github.com/tuannm99/tabdb/internal/dberr"
)

const (
	tableExt     = ".tab"
	metadataName = "metadata"
	metadataFile = metadataName + tableExt
	tmpSuffix    = ".tmp"
)

// FileSet names the files of one database below the store root:
//
//	/<db>/metadata.tab
//	/<db>/<table>.tab
//
// Names are lowercased so any spelling of a name resolves to the same files.
type FileSet struct {
	DB string
}

func fileSet(db string) FileSet { return FileSet{DB: strings.ToLower(db)} }

func (fs FileSet) Dir() string { return "/" + fs.DB }

func (fs FileSet) Metadata() string { return filepath.Join(fs.Dir(), metadataFile) }

func (fs FileSet) Table(name string) string {
	return filepath.Join(fs.Dir(), fs.tableKey(name)+tableExt)
}

// tableName returns the table a directory entry stores, if any.
func tableName(entry string) (string, bool) {
	if entry == metadataFile || !strings.HasSuffix(entry, tableExt) {
		return "", false
	}
	return strings.TrimSuffix(entry, tableExt), true
}

// tableKey is the name a table is stored and registered under.
func (fs FileSet) tableKey(name string) string { return strings.ToLower(name) }

// validName reports whether name can be a directory or file stem: non-empty
// and ASCII letters and digits only, so it can never escape the root.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// checkTableName rejects names that cannot be stored as a table file. The
// metadata file shares the table extension, so its stem is reserved.
func checkTableName(name string) error {
	if !validName(name) {
		return dberr.BadIdentifier(name)
	}
	if strings.EqualFold(name, metadataName) {
		return dberr.New(dberr.InvalidIdentifier,
			"The table name %s is reserved. Please choose a different name for your table.", name)
	}
	return nil
}
