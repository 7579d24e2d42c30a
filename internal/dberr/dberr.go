// Package dberr defines the error taxonomy shared by the parser, the table
// engine and the executor, and renders errors into the response protocol.
package dberr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. A Kind is itself an error so callers can write
// errors.Is(err, dberr.TableNotFound).
type Kind uint8

const (
	Unknown Kind = iota
	MalformedQuery
	InvalidKeyword
	InvalidIdentifier
	ForbiddenIdOperation
	DatabaseNotFound
	TableNotFound
	AlreadyExists
	ColumnNotFound
	NoRowsMatched
	MalformedCondition
	IOFailure
)

var kindNames = [...]string{
	Unknown:              "unknown",
	MalformedQuery:       "malformed query",
	InvalidKeyword:       "invalid keyword",
	InvalidIdentifier:    "invalid identifier",
	ForbiddenIdOperation: "forbidden id operation",
	DatabaseNotFound:     "database not found",
	TableNotFound:        "table not found",
	AlreadyExists:        "already exists",
	ColumnNotFound:       "column not found",
	NoRowsMatched:        "no rows matched",
	MalformedCondition:   "malformed condition",
	IOFailure:            "io failure",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) Error() string { return "tabdb: " + k.String() }

// Error is a classified failure. Msg is the user-facing text placed after
// the "[ERROR]: " tag.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches a bare Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

const errorTag = "[ERROR]: "

// Render formats err as a single response line.
func Render(err error) string {
	if err == nil {
		return "[OK]"
	}
	return errorTag + err.Error()
}

// ---- constructors for the messages used across packages ----

func Malformed() *Error {
	return New(MalformedQuery, "Query is malformed. Please input a valid query.")
}

func Malformedf(format string, args ...any) *Error {
	return New(MalformedQuery, "Malformed query. "+format, args...)
}

func BadKeyword(word string) *Error {
	return New(InvalidKeyword, "The keyword %s is invalid. Are you sure you spelled it correctly?", word)
}

func BadIdentifier(name string) *Error {
	return New(InvalidIdentifier,
		"Malformed query. The identifier %s is invalid. Identifiers may only contain letters and digits, "+
			"and SQL keywords (e.g. SELECT, TABLE, DROP) are reserved.", name)
}

func ForbiddenID() *Error {
	return New(ForbiddenIdOperation, "Manually changing the 'id' column is forbidden.")
}

func NoSuchDatabase(name string) *Error {
	return New(DatabaseNotFound, "Sorry, could not access database %s because this database does not exist.", name)
}

func NoSuchTable(name string) *Error {
	return New(TableNotFound, "Sorry, could not access table %s because this table does not exist.", name)
}

func BadCondition() *Error {
	return New(MalformedCondition, "Malformed condition.")
}

func NoRows() *Error {
	return New(NoRowsMatched, "No rows in the table matched the condition. Nothing was changed.")
}
