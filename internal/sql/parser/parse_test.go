package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/tabdb/internal/dberr"
)

func TestParse_RequireSemicolon(t *testing.T) {
	_, err := Parse("SELECT * FROM users")
	require.ErrorIs(t, err, dberr.MalformedQuery)
}

func TestParse_InvalidKeyword(t *testing.T) {
	_, err := Parse("SELCT * FROM users;")
	require.ErrorIs(t, err, dberr.InvalidKeyword)
	assert.Contains(t, err.Error(), "The keyword SELCT is invalid")

	_, err = Parse("FROM users ok;")
	require.ErrorIs(t, err, dberr.InvalidKeyword)
}

func TestParse_Use(t *testing.T) {
	cmd, err := Parse("USE MarksDB;")
	require.NoError(t, err)
	assert.Equal(t, &UseCmd{Database: "marksdb"}, cmd)

	_, err = Parse("USE a b;")
	require.ErrorIs(t, err, dberr.MalformedQuery)

	_, err = Parse("USE my_db;")
	require.ErrorIs(t, err, dberr.InvalidIdentifier)
}

func TestParse_CreateDatabase(t *testing.T) {
	cmd, err := Parse("CREATE DATABASE TestDB;")
	require.NoError(t, err)
	assert.Equal(t, &CreateCmd{Target: TargetDatabase, Name: "testdb"}, cmd)

	_, err = Parse("CREATE DATABASE testdb ok;")
	require.ErrorIs(t, err, dberr.MalformedQuery)
}

func TestParse_CreateTable_PreservesAttributeCase(t *testing.T) {
	cmd, err := Parse("create TABLE Marks (Name, mark, PASS);")
	require.NoError(t, err)
	assert.Equal(t, &CreateCmd{Target: TargetTable, Name: "marks", Attributes: []string{"Name", "mark", "PASS"}}, cmd)

	cmd, err = Parse("CREATE TABLE marks;")
	require.NoError(t, err)
	assert.Equal(t, &CreateCmd{Target: TargetTable, Name: "marks"}, cmd)
}

func TestParse_CreateTable_Malformed(t *testing.T) {
	for _, q := range []string{
		"CREATE TABLE marks name, mark;",
		"CREATE TABLE marks (name, mark;",
		"CREATE TABLE marks ();",
		"CREATE TABLE marks (name,, mark);",
		"CREATE TABLE marks (name mark);",
		"CREATE INTO marks;",
	} {
		_, err := Parse(q)
		require.ErrorIs(t, err, dberr.MalformedQuery, q)
	}

	_, err := Parse("CREATE TABLE marks (first_name);")
	require.ErrorIs(t, err, dberr.InvalidIdentifier)
}

func TestParse_Drop(t *testing.T) {
	cmd, err := Parse("DROP TABLE Marks;")
	require.NoError(t, err)
	assert.Equal(t, &DropCmd{Target: TargetTable, Name: "marks"}, cmd)

	cmd, err = Parse("drop database school;")
	require.NoError(t, err)
	assert.Equal(t, &DropCmd{Target: TargetDatabase, Name: "school"}, cmd)

	_, err = Parse("DROP COLUMN marks;")
	require.ErrorIs(t, err, dberr.MalformedQuery)
	assert.Contains(t, err.Error(), "but you input column")
}

func TestParse_Alter(t *testing.T) {
	cmd, err := Parse("ALTER TABLE Marks ADD Age;")
	require.NoError(t, err)
	assert.Equal(t, &AlterCmd{Table: "marks", Kind: AlterAdd, Attribute: "Age"}, cmd)

	cmd, err = Parse("alter table marks drop age;")
	require.NoError(t, err)
	assert.Equal(t, &AlterCmd{Table: "marks", Kind: AlterDrop, Attribute: "age"}, cmd)

	_, err = Parse("ALTER TABLE marks REMOVE age;")
	require.ErrorIs(t, err, dberr.MalformedQuery)
	assert.Contains(t, err.Error(), "either ADD or DROP")

	_, err = Parse("ALTER DATABASE marks ADD age;")
	require.ErrorIs(t, err, dberr.MalformedQuery)
}

func TestParse_Insert(t *testing.T) {
	cmd, err := Parse("INSERT INTO Marks VALUES ('Simon', 65, TRUE, NULL, 1.5, Bob);")
	require.NoError(t, err)

	ins, ok := cmd.(*InsertCmd)
	require.True(t, ok, "want *InsertCmd, got %T", cmd)
	assert.Equal(t, "marks", ins.Table)
	assert.Equal(t, []Token{
		{Kind: KindStringLiteral, Value: "Simon"},
		{Kind: KindIntegerLiteral, Value: "65"},
		{Kind: KindBooleanLiteral, Value: "TRUE"},
		{Kind: KindNull, Value: "NULL"},
		{Kind: KindFloatLiteral, Value: "1.5"},
		{Kind: KindPlainText, Value: "Bob"},
	}, ins.Values)
}

func TestParse_Insert_Malformed(t *testing.T) {
	for _, q := range []string{
		"INSERT INTO marks ('Simon');",
		"INSERT marks VALUES ('Simon');",
		"INSERT INTO marks VALUES 'Simon';",
		"INSERT INTO marks VALUES ();",
		"INSERT INTO marks VALUES ('Simon',);",
		"INSERT INTO marks VALUES ('Simon' 'Bob');",
	} {
		_, err := Parse(q)
		require.ErrorIs(t, err, dberr.MalformedQuery, q)
	}
}

func TestParse_Select(t *testing.T) {
	cmd, err := Parse("SELECT * FROM Marks;")
	require.NoError(t, err)
	assert.Equal(t, &SelectCmd{Table: "marks", Wildcard: true}, cmd)

	cmd, err = Parse("SELECT name, mark FROM marks WHERE mark > 40;")
	require.NoError(t, err)
	assert.Equal(t, &SelectCmd{
		Table:      "marks",
		Attributes: []string{"name", "mark"},
		Where:      &Terminal{Attribute: "mark", Comparator: Gt, Value: "40"},
	}, cmd)
}

func TestParse_Select_Errors(t *testing.T) {
	_, err := Parse("SELECT FROM marks;")
	require.ErrorIs(t, err, dberr.MalformedQuery)
	assert.Contains(t, err.Error(), "No columns were selected")

	_, err = Parse("SELECT * marks;")
	require.ErrorIs(t, err, dberr.MalformedQuery)

	_, err = Parse("SELECT * FROM marks extra;")
	require.ErrorIs(t, err, dberr.MalformedQuery)

	_, err = Parse("SELECT * FROM marks WHERE;")
	require.ErrorIs(t, err, dberr.MalformedCondition)

	_, err = Parse("SELECT * FROM marks WHERE mark = 40;")
	require.ErrorIs(t, err, dberr.MalformedCondition)
}

func TestParse_Update_PreservesValueCase(t *testing.T) {
	cmd, err := Parse("UPDATE Marks SET Name = 'Alice', mark = 40 WHERE name == 'Bob';")
	require.NoError(t, err)
	assert.Equal(t, &UpdateCmd{
		Table: "marks",
		Assignments: []Assignment{
			{Column: "name", Value: Token{Kind: KindStringLiteral, Value: "Alice"}},
			{Column: "mark", Value: Token{Kind: KindIntegerLiteral, Value: "40"}},
		},
		Where: &Terminal{Attribute: "name", Comparator: Eq, Value: "bob"},
	}, cmd)
}

func TestParse_Update_Errors(t *testing.T) {
	_, err := Parse("UPDATE marks SET mark = 40;")
	require.ErrorIs(t, err, dberr.MalformedQuery)

	_, err = Parse("UPDATE marks SET mark 40 WHERE id == 1;")
	require.ErrorIs(t, err, dberr.MalformedQuery)
	assert.Contains(t, err.Error(), "name value pair")

	_, err = Parse("UPDATE marks SET mark = Bob WHERE id == 1;")
	require.ErrorIs(t, err, dberr.MalformedQuery)

	_, err = Parse("UPDATE marks mark = 40 WHERE id == 1;")
	require.ErrorIs(t, err, dberr.MalformedQuery)
}

func TestParse_Delete(t *testing.T) {
	cmd, err := Parse("DELETE FROM Marks WHERE mark<40;")
	require.NoError(t, err)
	assert.Equal(t, &DeleteCmd{
		Table: "marks",
		Where: &Terminal{Attribute: "mark", Comparator: Lt, Value: "40"},
	}, cmd)

	_, err = Parse("DELETE FROM marks;")
	require.ErrorIs(t, err, dberr.MalformedQuery)

	_, err = Parse("DELETE FROM marks WHERE;")
	require.ErrorIs(t, err, dberr.MalformedCondition)
}

func TestParse_Join(t *testing.T) {
	cmd, err := Parse("JOIN coursework AND Marks ON submission AND ID;")
	require.NoError(t, err)
	assert.Equal(t, &JoinCmd{Left: "coursework", Right: "marks", LeftAttr: "submission", RightAttr: "id"}, cmd)

	_, err = Parse("JOIN a OR b ON x AND y;")
	require.ErrorIs(t, err, dberr.MalformedQuery)

	_, err = Parse("JOIN a AND b ON x;")
	require.ErrorIs(t, err, dberr.MalformedQuery)
}

func TestAlterKind_String(t *testing.T) {
	assert.Equal(t, "ADD", AlterAdd.String())
	assert.Equal(t, "DROP", AlterDrop.String())
}

func TestParse_OneLetterNames(t *testing.T) {
	cmd, err := Parse("USE d;")
	require.NoError(t, err)
	assert.Equal(t, &UseCmd{Database: "d"}, cmd)

	cmd, err = Parse("CREATE TABLE t (a);")
	require.NoError(t, err)
	assert.Equal(t, &CreateCmd{Target: TargetTable, Name: "t", Attributes: []string{"a"}}, cmd)

	cmd, err = Parse("ALTER TABLE t ADD X;")
	require.NoError(t, err)
	assert.Equal(t, &AlterCmd{Table: "t", Kind: AlterAdd, Attribute: "X"}, cmd)
}

func TestParse_EmptyNameRejected(t *testing.T) {
	for _, q := range []string{
		"USE '';",
		"CREATE DATABASE '';",
		"DROP DATABASE '';",
		"CREATE TABLE '';",
		"DROP TABLE '';",
		"CREATE TABLE t ('', a);",
		"SELECT * FROM '';",
	} {
		_, err := Parse(q)
		require.ErrorIs(t, err, dberr.InvalidIdentifier, q)
	}
}

func TestParse_WalkthroughQueries(t *testing.T) {
	for _, tc := range []struct {
		query string
		want  Command
	}{
		{"CREATE DATABASE d;", &CreateCmd{Target: TargetDatabase, Name: "d"}},
		{"USE d;", &UseCmd{Database: "d"}},
		{"CREATE TABLE t (name, age);", &CreateCmd{Target: TargetTable, Name: "t", Attributes: []string{"name", "age"}}},
		{"INSERT INTO t VALUES ('Amy', 30);", &InsertCmd{Table: "t", Values: []Token{
			{Kind: KindStringLiteral, Value: "Amy"},
			{Kind: KindIntegerLiteral, Value: "30"},
		}}},
		{"SELECT * FROM t;", &SelectCmd{Table: "t", Wildcard: true}},
		{"ALTER TABLE t DROP id;", &AlterCmd{Table: "t", Kind: AlterDrop, Attribute: "id"}},
		{"SELECT * FROM t WHERE age LIKE '^3';", &SelectCmd{
			Table:    "t",
			Wildcard: true,
			Where:    &Terminal{Attribute: "age", Comparator: Like, Value: "^3"},
		}},
		{"JOIN t1 AND t2 ON name AND owner;", &JoinCmd{Left: "t1", Right: "t2", LeftAttr: "name", RightAttr: "owner"}},
		{"UPDATE t SET id = 5 WHERE name == 'Amy';", &UpdateCmd{
			Table:       "t",
			Assignments: []Assignment{{Column: "id", Value: Token{Kind: KindIntegerLiteral, Value: "5"}}},
			Where:       &Terminal{Attribute: "name", Comparator: Eq, Value: "amy"},
		}},
	} {
		cmd, err := Parse(tc.query)
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.want, cmd, tc.query)
	}
}
