package repository

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithSheet reads the named worksheet from XLSX stores instead of the first one.
func WithSheet(name string) FileOption {
	return func(s *FileStore) {
		if name != "" {
			s.sheet = name
		}
	}
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithTable overrides the records table name.
func WithTable(name string) PostgresOption {
	return func(s *PostgresStore) {
		if name != "" {
			s.table = name
		}
	}
}
