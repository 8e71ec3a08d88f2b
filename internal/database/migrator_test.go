package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQLStatements(t *testing.T) {
	content := `CREATE TABLE files (id UUID PRIMARY KEY);
CREATE INDEX idx_files_id ON files(id);`

	statements := splitSQLStatements(content)
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "CREATE TABLE files")
	assert.Contains(t, statements[1], "CREATE INDEX")
}

func TestSplitSQLStatementsKeepsFunctionBodies(t *testing.T) {
	content := `CREATE OR REPLACE FUNCTION move_file_to_trash(p_file_id UUID)
RETURNS VOID AS $$
BEGIN
    UPDATE files SET deleted_at = NOW() WHERE id = p_file_id;
    INSERT INTO file_trash (file_id) VALUES (p_file_id);
END;
$$ LANGUAGE plpgsql;

SELECT 1;`

	statements := splitSQLStatements(content)
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "LANGUAGE plpgsql")
	assert.Contains(t, statements[0], "INSERT INTO file_trash")
	assert.Contains(t, statements[1], "SELECT 1")
}

func TestSplitSQLStatementsIgnoresTrailingComments(t *testing.T) {
	content := `SELECT 1;
-- just a trailing comment`

	statements := splitSQLStatements(content)
	require.Len(t, statements, 1)
}
