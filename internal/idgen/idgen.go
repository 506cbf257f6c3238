// Package idgen hands out unique string identifiers for stored entities.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/wajidashraf/CostModelAppTraining/internal/config"
	"go.uber.org/fx"
)

// Generator produces unique identifiers.
type Generator interface {
	NewID() string
}

type snowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflake wraps a snowflake node as a Generator.
func NewSnowflake(node *snowflake.Node) Generator {
	return &snowflakeGenerator{node: node}
}

func (g *snowflakeGenerator) NewID() string {
	return g.node.Generate().String()
}

// NewNode builds the process snowflake node from config.
func NewNode(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	return node, nil
}

var Module = fx.Module("idgen",
	fx.Provide(
		NewNode,
		NewSnowflake,
	),
)
