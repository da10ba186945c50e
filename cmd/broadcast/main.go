// Command broadcast runs the broadcast/gossip workload node.
package main

import (
	"maelstrom-node/internal/appmain"
	"maelstrom-node/internal/config"
	"maelstrom-node/internal/node"
	"maelstrom-node/workloads/broadcast"
)

func main() {
	appmain.Run("broadcast", func(cfg config.Config, n *node.Node) node.Handler {
		return broadcast.New(cfg)
	})
}
