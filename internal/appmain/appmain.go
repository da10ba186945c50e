// SPDX-License-Identifier: MIT

// Package appmain is the shared command-line entry point every
// workload binary uses: parse the optional ini config argument, wire
// stdin/stdout through ioline, build a Node, run the handler to
// completion, drain the writer, exit. Grounded on kafka-proxy/kprox.go's
// main(): flag.Usage override plus a single optional positional
// argument, ini.NewParser for anything beyond that.
package appmain

import (
	"flag"
	"fmt"
	"log"
	"os"

	"maelstrom-node/internal/config"
	"maelstrom-node/internal/ioline"
	"maelstrom-node/internal/node"
)

// NewHandler builds the workload's Handler, given the loaded config and
// the Node it will run against (some workloads, like counter, need the
// Node itself to build a seqkv client before Run starts).
type NewHandler func(cfg config.Config, n *node.Node) node.Handler

// Run parses args (normally os.Args[1:]), loads config, and runs the
// workload built by newHandler against stdin/stdout until stdin closes.
func Run(name string, newHandler NewHandler) {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "%s: a Maelstrom workload node\n", name)
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [ini-config-file]\n", name)
		fmt.Fprintf(flag.CommandLine.Output(), "\nReads newline-delimited Maelstrom envelopes on stdin, writes replies on stdout.\n")
	}
	flag.Parse()

	cfg, err := config.Load(flag.Args())
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}

	in := ioline.StartReader(os.Stdin, int(cfg.QueueCapacity))
	out, writerDone := ioline.StartWriter(os.Stdout, int(cfg.QueueCapacity))

	n := node.New(out)
	handler := newHandler(cfg, n)

	if err := n.Run(in, handler); err != nil {
		log.Fatalf("%s: %v", name, err)
	}

	close(out)
	<-writerDone
}
