package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "opencurrent_"

const (
	TABLE_COLLECTIONS = TableName("collections")
	TABLE_CHUNKS      = TableName("chunks")
)
