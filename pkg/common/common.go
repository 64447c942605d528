package common

import (
	"math/rand"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	idnode *snowflake.Node
	idonce sync.Once
)

// UUIDint64 returns a process-unique int64 identifier.
func UUIDint64() int64 {
	idonce.Do(func() {
		node, err := snowflake.NewNode(rand.Int63n(1023) + 1)
		if err != nil {
			panic(err)
		}
		idnode = node
	})
	return idnode.Generate().Int64()
}
