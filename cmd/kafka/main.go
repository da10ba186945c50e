// Command kafka runs the Kafka-style log workload node.
package main

import (
	"maelstrom-node/internal/appmain"
	"maelstrom-node/internal/config"
	"maelstrom-node/internal/kafkamirror"
	"maelstrom-node/internal/node"
	"maelstrom-node/workloads/kafkalog"
)

func main() {
	appmain.Run("kafka", func(cfg config.Config, n *node.Node) node.Handler {
		mirror := kafkamirror.New(cfg.KafkaMirrorBroker, "maelstrom-kafka-node")
		return kafkalog.New(mirror)
	})
}
