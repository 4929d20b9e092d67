package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

const defaultNodeID = 1

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has an effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a time-ordered int64 ID for a pipeline run.
// Falls back to node 1 when Init was never called (tests, one-off CLI runs).
func New() int64 {
	once.Do(func() {
		node, _ = snowflake.NewNode(defaultNodeID)
	})
	return node.Generate().Int64()
}
