// Command counter runs the grow-only counter workload node.
package main

import (
	"maelstrom-node/internal/appmain"
	"maelstrom-node/internal/config"
	"maelstrom-node/internal/node"
	"maelstrom-node/workloads/counter"
)

func main() {
	appmain.Run("counter", func(cfg config.Config, n *node.Node) node.Handler {
		return counter.New(n)
	})
}
