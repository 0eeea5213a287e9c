package parser

import "git.lost.host/meutraa/slideplay/internal/game"

type Parser interface {
	Parse(name string, data []byte) *game.Track
}
