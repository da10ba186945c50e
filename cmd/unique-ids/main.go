// Command unique-ids runs the unique-id-generation workload node.
package main

import (
	"maelstrom-node/internal/appmain"
	"maelstrom-node/internal/config"
	"maelstrom-node/internal/node"
	"maelstrom-node/workloads/uniqueids"
)

func main() {
	appmain.Run("unique-ids", func(cfg config.Config, n *node.Node) node.Handler {
		return uniqueids.New()
	})
}
