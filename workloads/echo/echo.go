// Package echo implements the echo workload (spec.md §4.8, scenario 1):
// reply to an "echo" request with the same "echo" field, unmodified.
package echo

import (
	"log"

	"maelstrom-node/internal/node"
	"maelstrom-node/internal/proto"
)

// Handler is stateless: every echo is answered independently.
type Handler struct{}

func (Handler) Handle(n *node.Node, env proto.Envelope) {
	typ, ok := env.Body.Type()
	if !ok || typ != "echo" {
		return
	}
	if err := n.Reply(env, map[string]any{"echo": env.Body["echo"]}); err != nil {
		log.Printf("echo: reply failed: %v", err)
	}
}
