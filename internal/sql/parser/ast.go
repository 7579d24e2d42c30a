package parser

// Command is one parsed statement.
type Command interface {
	cmdNode()
}

// Target is the object kind a CREATE or DROP acts on.
type Target uint8

const (
	TargetDatabase Target = iota
	TargetTable
)

// AlterKind is the alteration an ALTER TABLE performs.
type AlterKind uint8

const (
	AlterAdd AlterKind = iota
	AlterDrop
)

func (k AlterKind) String() string {
	if k == AlterAdd {
		return "ADD"
	}
	return "DROP"
}

// USE db;
type UseCmd struct {
	Database string
}

// CREATE DATABASE db;  |  CREATE TABLE t [(a, b, ...)];
type CreateCmd struct {
	Target     Target
	Name       string
	Attributes []string
}

// DROP DATABASE db;  |  DROP TABLE t;
type DropCmd struct {
	Target Target
	Name   string
}

// ALTER TABLE t ADD|DROP attr;
type AlterCmd struct {
	Table     string
	Kind      AlterKind
	Attribute string
}

// INSERT INTO t VALUES (v1, v2, ...);
type InsertCmd struct {
	Table  string
	Values []Token
}

// SELECT * | a, b FROM t [WHERE cond];
type SelectCmd struct {
	Table      string
	Wildcard   bool
	Attributes []string
	Where      Condition // nil when there is no WHERE clause
}

type Assignment struct {
	Column string
	Value  Token
}

// UPDATE t SET a = v, ... WHERE cond;
type UpdateCmd struct {
	Table       string
	Assignments []Assignment
	Where       Condition
}

// DELETE FROM t WHERE cond;
type DeleteCmd struct {
	Table string
	Where Condition
}

// JOIN t1 AND t2 ON a1 AND a2;
type JoinCmd struct {
	Left, Right         string
	LeftAttr, RightAttr string
}

func (*UseCmd) cmdNode()    {}
func (*CreateCmd) cmdNode() {}
func (*DropCmd) cmdNode()   {}
func (*AlterCmd) cmdNode()  {}
func (*InsertCmd) cmdNode() {}
func (*SelectCmd) cmdNode() {}
func (*UpdateCmd) cmdNode() {}
func (*DeleteCmd) cmdNode() {}
func (*JoinCmd) cmdNode()   {}

// Comparator is a terminal condition's comparison operator.
type Comparator string

const (
	Eq   Comparator = "=="
	Gt   Comparator = ">"
	Lt   Comparator = "<"
	Ge   Comparator = ">="
	Le   Comparator = "<="
	Ne   Comparator = "!="
	Like Comparator = "like"
)

// BoolOp joins two sub-conditions.
type BoolOp string

const (
	And BoolOp = "and"
	Or  BoolOp = "or"
)

// Condition is a WHERE expression tree: either a *Terminal or a *Binary.
type Condition interface {
	condNode()
}

// Terminal compares one attribute with a literal.
type Terminal struct {
	Attribute  string
	Comparator Comparator
	Value      string
}

// Binary combines two conditions with AND or OR.
type Binary struct {
	Left  Condition
	Op    BoolOp
	Right Condition
}

func (*Terminal) condNode() {}
func (*Binary) condNode()   {}
