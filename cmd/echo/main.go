// Command echo runs the echo workload node.
package main

import (
	"maelstrom-node/internal/appmain"
	"maelstrom-node/internal/config"
	"maelstrom-node/internal/node"
	"maelstrom-node/workloads/echo"
)

func main() {
	appmain.Run("echo", func(cfg config.Config, n *node.Node) node.Handler {
		return echo.Handler{}
	})
}
