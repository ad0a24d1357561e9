package agents

import (
	"context"
	"errors"
	"fmt"
	"log"

	"rumbo/pkg/utils"
)

// Node is one pipeline step: a named function of the shared state. When, if
// set, gates the node; a false result skips it without failing the run.
type Node struct {
	Name string
	When func(*State) bool
	Run  func(ctx context.Context, s *State) error
}

// Graph evaluates nodes in declared order. Transient upstream failures are
// retried once at the failing node; schema retries happen inside the nodes
// themselves, so a surfaced generation error is already final.
type Graph struct {
	nodes []Node
}

func NewGraph(nodes ...Node) *Graph {
	return &Graph{nodes: nodes}
}

func (g *Graph) Run(ctx context.Context, s *State) error {
	for _, node := range g.nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if node.When != nil && !node.When(s) {
			continue
		}

		err := node.Run(ctx, s)
		if err != nil && errors.Is(err, utils.ErrTransient) {
			log.Printf("node %s hit transient error, retrying once: %v", node.Name, err)
			err = node.Run(ctx, s)
		}
		if err != nil {
			return fmt.Errorf("node %s: %w", node.Name, err)
		}
	}
	return nil
}
